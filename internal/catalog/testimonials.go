package catalog

import "time"

// TestimonialInterval is how often the home page rotates testimonials.
const TestimonialInterval = 5 * time.Second

// Testimonial is a customer quote shown on the home page.
type Testimonial struct {
	Name    string
	Avatar  string
	Rating  int
	Comment string
	Date    string
	Service string
}

// Testimonials are fixed copy, not editable content.
var Testimonials = []Testimonial{
	{
		Name:    "Carlos Silva",
		Avatar:  "https://ui-avatars.com/api/?name=Carlos+Silva&background=DC2626&color=fff&size=128",
		Rating:  5,
		Comment: "Atendimento excepcional! Encontrei a peça que precisava para meu Gol e ainda recebi orientação técnica. Preço justo e entrega rápida. Recomendo!",
		Date:    "Há 2 semanas",
		Service: "Kit de Embreagem",
	},
	{
		Name:    "Maria Santos",
		Avatar:  "https://ui-avatars.com/api/?name=Maria+Santos&background=DC2626&color=fff&size=128",
		Rating:  5,
		Comment: "Já sou cliente há anos. Sempre encontro o que preciso e a equipe é muito atenciosa. Melhor custo-benefício da região!",
		Date:    "Há 1 mês",
		Service: "Pastilhas de Freio",
	},
	{
		Name:    "João Pedro",
		Avatar:  "https://ui-avatars.com/api/?name=Joao+Pedro&background=DC2626&color=fff&size=128",
		Rating:  5,
		Comment: "Precisava de uma peça urgente para meu HB20. Eles tinham em estoque e me atenderam super rápido. Salvaram meu dia!",
		Date:    "Há 3 dias",
		Service: "Correia Dentada",
	},
	{
		Name:    "Ana Paula",
		Avatar:  "https://ui-avatars.com/api/?name=Ana+Paula&background=DC2626&color=fff&size=128",
		Rating:  5,
		Comment: "Excelente variedade de peças tanto nacionais quanto importadas. Preços competitivos e atendimento nota 10!",
		Date:    "Há 1 semana",
		Service: "Bateria Moura",
	},
	{
		Name:    "Roberto Lima",
		Avatar:  "https://ui-avatars.com/api/?name=Roberto+Lima&background=DC2626&color=fff&size=128",
		Rating:  5,
		Comment: "Compro aqui há mais de 10 anos. Confiança total! Peças originais, garantia e um atendimento que faz diferença.",
		Date:    "Há 2 dias",
		Service: "Amortecedores",
	},
}
