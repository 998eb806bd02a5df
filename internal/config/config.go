// Package config reads the .zipcd configuration file.
//
// The file is in INI format:
//
//	[zipcd]
//	workers = 8
//
//	[s3://my-bucket]
//	aws-profile = my-profile
//	expected-bucket-owner = 123456789012
package config

import (
	"github.com/aws/aws-sdk-go-v2/aws"
)

// ZipcdConfig contains settings for the commands.
type ZipcdConfig struct {
	// Workers is the default number of goroutines used to resolve local file headers.
	//
	// The zero value means the command decides.
	Workers int
}

// ForZipcd returns the [zipcd] section.
func (l *Loader) ForZipcd() (c ZipcdConfig) {
	sec, err := l.cfg.GetSection("zipcd")
	if err != nil {
		return c
	}

	c.Workers = sec.Key("workers").MustInt(0)
	return
}

// ForZipcd calls Loader.ForZipcd on the DefaultLoader instance.
func ForZipcd() ZipcdConfig {
	return DefaultLoader.ForZipcd()
}

// BucketConfig contains configuration settings for a specific bucket.
type BucketConfig struct {
	Bucket              string
	AWSProfile          string
	ExpectedBucketOwner *string
}

// ForBucket returns configuration for a specific bucket.
func (l *Loader) ForBucket(bucket string) (c BucketConfig) {
	c.Bucket = bucket

	sec, err := l.cfg.GetSection("s3://" + bucket)
	if err != nil {
		return c
	}

	c.AWSProfile = sec.Key("aws-profile").Value()

	if sec.HasKey("expected-bucket-owner") {
		c.ExpectedBucketOwner = aws.String(sec.Key("expected-bucket-owner").Value())
	}

	return
}

// ForBucket calls Loader.ForBucket on the DefaultLoader instance.
func ForBucket(bucket string) BucketConfig {
	return DefaultLoader.ForBucket(bucket)
}
