// Package media stores avatar images in S3-compatible object storage and
// implements lmsAuth.MediaProvider.
package media
