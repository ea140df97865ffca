// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage uploads admin images (logo, hero, gallery, category and
// product photos) to an S3-compatible bucket. Without a bucket the admin
// surface inlines images as data URLs instead, so this package is optional.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// immutable is sent with every object: keys are never reused, so a
// browser or CDN may keep an image forever.
const immutable = "public, max-age=31536000, immutable"

// Options locates the bucket. PublicURL, when set, is the CDN origin
// images are served from; otherwise path-style bucket URLs are used.
type Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

// Client uploads images to one public bucket.
type Client struct {
	s3      *s3.Client
	bucket  string
	baseURL string
}

// New returns a path-style client for o. Every field but PublicURL is
// required.
func New(o Options) (*Client, error) {
	var missing []string
	for name, v := range map[string]string{
		"endpoint": o.Endpoint, "region": o.Region, "access key": o.AccessKey,
		"secret key": o.SecretKey, "bucket": o.Bucket,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.New("storage: missing " + strings.Join(missing, ", "))
	}

	endpoint := strings.TrimRight(o.Endpoint, "/")
	baseURL := strings.TrimRight(o.PublicURL, "/")
	if baseURL == "" {
		baseURL = endpoint + "/" + o.Bucket
	}

	return &Client{
		s3: s3.New(s3.Options{
			Region:       o.Region,
			BaseEndpoint: aws.String(endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
			UsePathStyle: true,
		}),
		bucket:  o.Bucket,
		baseURL: baseURL,
	}, nil
}

// ObjectKey returns a fresh key for an image of field, for example
// "images/product/5f0c...e1.jpg".
func ObjectKey(field, ext string) string {
	return path.Join("images", field, uuid.NewString()+ext)
}

// URL is where key is publicly served.
func (c *Client) URL(key string) string {
	return c.baseURL + "/" + key
}

// Upload stores data under key as a public object and returns its URL.
func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(immutable),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	return c.URL(key), nil
}
