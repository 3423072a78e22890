package aws

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadReport envia o arquivo para s3://bucket/key.
func (r *AWSRepositoryImpl) UploadReport(ctx context.Context, bucket, key, filePath string) (string, error) {
	client, err := r.s3Client()
	if err != nil {
		return "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("error opening report %s: %w", filePath, err)
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(filePath)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		return "", classifyAWSError(serviceS3, err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
