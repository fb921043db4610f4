package models

import "fmt"

const (
	ClaudeV2         = "anthropic.claude-v2"
	ClaudeV21        = "anthropic.claude-v2:1"
	ClaudeInstantV1  = "anthropic.claude-instant-v1"
	Claude3Haiku     = "anthropic.claude-3-haiku-20240307-v1:0"
	Claude3Sonnet    = "anthropic.claude-3-sonnet-20240229-v1:0"
	Claude35Sonnet   = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	TitanTextPremier = "amazon.titan-text-premier-v1:0"
	DefaultModel     = ClaudeV2
)

const DefaultRegion = "us-east-1"

const foundationModelFmt = "arn:aws:bedrock:%s::foundation-model/%s"

// FoundationModelArn returns the ARN of a foundation model in the given region.
func FoundationModelArn(region, modelID string) string {
	return fmt.Sprintf(foundationModelFmt, region, modelID)
}

// DefaultModelArn returns the ARN of DefaultModel in the given region.
func DefaultModelArn(region string) string {
	return FoundationModelArn(region, DefaultModel)
}
