package wrapper

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/checkmarxDev/kb-wrapper/internal"
	"github.com/checkmarxDev/kb-wrapper/pkg/message"
	"github.com/checkmarxDev/kb-wrapper/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type KnowledgeBaseWrapper interface {
	Ask(ctx context.Context, question string, opts ...AskOption) (*message.Answer, error)
	Region() string
	ModelArn() string
}

type AskOptions struct {
	SessionID       string
	NumberOfResults int
}

type AskOption func(*AskOptions)

// WithSessionID continues an existing Bedrock session.
func WithSessionID(id string) AskOption {
	return func(o *AskOptions) {
		o.SessionID = id
	}
}

// WithNumberOfResults sets how many passages the knowledge base retrieves.
func WithNumberOfResults(n int) AskOption {
	return func(o *AskOptions) {
		o.NumberOfResults = n
	}
}

type KnowledgeBaseWrapperImpl struct {
	knowledgeBaseID string
	knowledgeBase   *internal.KnowledgeBaseImpl
}

// NewKnowledgeBaseWrapper loads the default AWS configuration for region and returns a wrapper
// querying knowledgeBaseID. An empty region selects models.DefaultRegion and an empty modelArn the
// default foundation model of the region.
func NewKnowledgeBaseWrapper(ctx context.Context, knowledgeBaseID, region, modelArn string) (KnowledgeBaseWrapper, error) {
	if region == "" {
		region = models.DefaultRegion
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	client := bedrockagentruntime.NewFromConfig(awsConfig)
	return newKnowledgeBaseWrapper(client, knowledgeBaseID, region, modelArn), nil
}

func newKnowledgeBaseWrapper(api internal.RetrieveAndGenerateAPI, knowledgeBaseID, region, modelArn string) *KnowledgeBaseWrapperImpl {
	return &KnowledgeBaseWrapperImpl{
		knowledgeBaseID: knowledgeBaseID,
		knowledgeBase:   internal.NewKnowledgeBaseImpl(api, region, modelArn),
	}
}

func (w *KnowledgeBaseWrapperImpl) Region() string {
	return w.knowledgeBase.Region()
}

func (w *KnowledgeBaseWrapperImpl) ModelArn() string {
	return w.knowledgeBase.ModelArn()
}

func (w *KnowledgeBaseWrapperImpl) Ask(ctx context.Context, question string, opts ...AskOption) (*message.Answer, error) {
	var options AskOptions
	for _, opt := range opts {
		opt(&options)
	}
	metaData := &message.MetaData{RequestID: uuid.New().String()}
	log.Debug().
		Str("request_id", metaData.RequestID).
		Str("knowledge_base_id", w.knowledgeBaseID).
		Str("model_arn", w.ModelArn()).
		Msg("retrieve and generate")

	answer, err := w.knowledgeBase.Call(ctx, metaData, &message.Query{
		Question:        question,
		KnowledgeBaseID: w.knowledgeBaseID,
		SessionID:       options.SessionID,
		NumberOfResults: options.NumberOfResults,
	})
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("request_id", metaData.RequestID).
		Str("session_id", answer.SessionID).
		Int("citations", len(answer.Citations)).
		Msg("retrieve and generate done")
	return answer, nil
}
