// Package dynamodb implements object.Client on an Amazon DynamoDB table.
//
// It suits small blocks with latency-sensitive access, where a single
// GetItem beats an S3 round trip. See Client for the table schema.
package dynamodb
