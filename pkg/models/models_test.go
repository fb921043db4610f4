package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultModelArn(t *testing.T) {
	arn := DefaultModelArn("eu-west-2")
	assert.Equal(t, "arn:aws:bedrock:eu-west-2::foundation-model/anthropic.claude-v2", arn)
	assert.Equal(t, 1, strings.Count(arn, "eu-west-2"))
}

func TestFoundationModelArn(t *testing.T) {
	for _, region := range []string{DefaultRegion, "us-west-2", "ap-northeast-1"} {
		arn := FoundationModelArn(region, Claude3Haiku)
		assert.Equal(t, 1, strings.Count(arn, region), arn)
		assert.True(t, strings.HasSuffix(arn, "::foundation-model/"+Claude3Haiku), arn)
	}
}
