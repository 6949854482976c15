package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/outreach/internal/config"
	"github.com/ignite/outreach/internal/pkg/logger"
)

// SESSender delivers mail through AWS SES using the SDK v2.
// SES simple content carries no attachments; campaigns with attachments
// should run on the SMTP transport.
type SESSender struct {
	client *sesv2.Client
}

// NewSESSender creates an SES sender. Initializes the AWS SDK client if
// credentials are provided; falls back to the default credential chain
// otherwise.
func NewSESSender(cfg config.SESConfig) *SESSender {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		log.Printf("[SES] Warning: failed to initialize AWS config: %v", err)
		return &SESSender{}
	}
	return &SESSender{client: sesv2.NewFromConfig(awsCfg)}
}

// Send delivers a single email through AWS SES.
func (s *SESSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	if s.client == nil {
		return nil, fmt.Errorf("SES client not initialized - check credentials")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", msg.FromName, msg.FromEmail)),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	}
	if msg.Text != "" {
		input.Content.Simple.Body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}
	if len(msg.Attachments) > 0 {
		log.Printf("[SES] dropping %d attachment(s): simple content does not support them", len(msg.Attachments))
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		logger.Warn("ses send failed", "to", msg.To, "err", err)
		return &Result{Success: false, Error: err.Error()}, nil
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}

	logger.Info("ses send ok", "to", msg.To, "message_id", messageID)
	return &Result{Success: true, MessageID: messageID}, nil
}
