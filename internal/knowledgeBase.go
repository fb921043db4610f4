package internal

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/aws/smithy-go"
	"github.com/checkmarxDev/kb-wrapper/pkg/message"
	"github.com/checkmarxDev/kb-wrapper/pkg/models"
	"github.com/rs/zerolog/log"
)

// RetrieveAndGenerateAPI is the part of the Bedrock Agent Runtime client used for knowledge base queries.
type RetrieveAndGenerateAPI interface {
	RetrieveAndGenerate(ctx context.Context, params *bedrockagentruntime.RetrieveAndGenerateInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveAndGenerateOutput, error)
}

type KnowledgeBase interface {
	Call(ctx context.Context, metaData *message.MetaData, query *message.Query) (*message.Answer, error)
}

var _ KnowledgeBase = (*KnowledgeBaseImpl)(nil)

type KnowledgeBaseImpl struct {
	api      RetrieveAndGenerateAPI
	region   string
	modelArn string
}

func NewKnowledgeBaseImpl(api RetrieveAndGenerateAPI, region, modelArn string) *KnowledgeBaseImpl {
	if region == "" {
		region = models.DefaultRegion
	}
	if modelArn == "" {
		modelArn = models.DefaultModelArn(region)
	}
	return &KnowledgeBaseImpl{
		api:      api,
		region:   region,
		modelArn: modelArn,
	}
}

func (k *KnowledgeBaseImpl) Region() string {
	return k.region
}

func (k *KnowledgeBaseImpl) ModelArn() string {
	return k.modelArn
}

func (k *KnowledgeBaseImpl) Call(ctx context.Context, metaData *message.MetaData, query *message.Query) (*message.Answer, error) {
	input, err := k.prepareRequest(query)
	if err != nil {
		return nil, err
	}

	output, err := k.api.RetrieveAndGenerate(ctx, input)
	if err != nil {
		logger := log.Error().Err(err).Str("knowledge_base_id", query.KnowledgeBaseID)
		if metaData != nil {
			logger = logger.Str("request_id", metaData.RequestID)
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			logger = logger.Str("error_code", apiErr.ErrorCode())
		}
		logger.Msg("Error querying knowledge base")
		return nil, fromAPIError(err)
	}

	return k.handleResponse(output)
}

func (k *KnowledgeBaseImpl) prepareRequest(query *message.Query) (*bedrockagentruntime.RetrieveAndGenerateInput, error) {
	if query == nil || query.Question == "" {
		return nil, ErrEmptyQuestion
	}
	if query.KnowledgeBaseID == "" {
		return nil, ErrMissingKnowledgeBaseID
	}
	modelArn := query.ModelArn
	if modelArn == "" {
		modelArn = k.modelArn
	}

	kbConfig := &types.KnowledgeBaseRetrieveAndGenerateConfiguration{
		KnowledgeBaseId: aws.String(query.KnowledgeBaseID),
		ModelArn:        aws.String(modelArn),
	}
	if query.NumberOfResults < 0 || query.NumberOfResults > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNumberOfResults, query.NumberOfResults)
	}
	if query.NumberOfResults > 0 {
		kbConfig.RetrievalConfiguration = &types.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &types.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(int32(query.NumberOfResults)),
			},
		}
	}

	input := &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &types.RetrieveAndGenerateInput{
			Text: aws.String(query.Question),
		},
		RetrieveAndGenerateConfiguration: &types.RetrieveAndGenerateConfiguration{
			Type:                       types.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: kbConfig,
		},
	}
	if query.SessionID != "" {
		input.SessionId = aws.String(query.SessionID)
	}
	return input, nil
}

func (k *KnowledgeBaseImpl) handleResponse(output *bedrockagentruntime.RetrieveAndGenerateOutput) (*message.Answer, error) {
	if output == nil || output.Output == nil || output.Output.Text == nil {
		return nil, ErrMalformedResponse
	}
	answer := &message.Answer{
		Text:      aws.ToString(output.Output.Text),
		SessionID: aws.ToString(output.SessionId),
	}
	for _, c := range output.Citations {
		answer.Citations = append(answer.Citations, toCitation(c))
	}
	return answer, nil
}

func toCitation(c types.Citation) message.Citation {
	var citation message.Citation
	if c.GeneratedResponsePart != nil && c.GeneratedResponsePart.TextResponsePart != nil {
		citation.Text = aws.ToString(c.GeneratedResponsePart.TextResponsePart.Text)
	}
	for _, r := range c.RetrievedReferences {
		reference := message.Reference{Location: referenceLocation(r.Location)}
		if r.Content != nil {
			reference.Excerpt = aws.ToString(r.Content.Text)
		}
		citation.References = append(citation.References, reference)
	}
	return citation
}

func referenceLocation(l *types.RetrievalResultLocation) string {
	if l == nil {
		return ""
	}
	switch {
	case l.S3Location != nil:
		return aws.ToString(l.S3Location.Uri)
	case l.WebLocation != nil:
		return aws.ToString(l.WebLocation.Url)
	case l.ConfluenceLocation != nil:
		return aws.ToString(l.ConfluenceLocation.Url)
	case l.SharePointLocation != nil:
		return aws.ToString(l.SharePointLocation.Url)
	case l.SalesforceLocation != nil:
		return aws.ToString(l.SalesforceLocation.Url)
	}
	return ""
}

func fromAPIError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if hint := errorHint(apiErr.ErrorCode()); hint != "" {
			return fmt.Errorf("%w (%s)", err, hint)
		}
	}
	return err
}

func errorHint(code string) string {
	switch code {
	case "AccessDeniedException":
		return "check the IAM permissions for bedrock:RetrieveAndGenerate and model access"
	case "ResourceNotFoundException":
		return "verify the knowledge base id and region"
	case "ThrottlingException":
		return "request was throttled"
	case "ValidationException":
		return "check the model ARN and request parameters"
	}
	return ""
}
