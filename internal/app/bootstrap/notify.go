package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/leadgate/internal/config"
	"github.com/wolfman30/leadgate/internal/notify"
	"github.com/wolfman30/leadgate/pkg/logging"
)

// BuildLeadNotifier wires optional new-lead emails. It returns nil when no
// recipient or provider credentials are configured.
func BuildLeadNotifier(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*notify.LeadNotifier, error) {
	if cfg == nil || strings.TrimSpace(cfg.LeadNotifyEmail) == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	provider, err := notify.ParseProvider(cfg.EmailProvider)
	if err != nil {
		return nil, &appconfig.ConfigError{Reason: err.Error()}
	}
	opts := notify.Options{
		Provider:       provider,
		Recipient:      cfg.LeadNotifyEmail,
		FromEmail:      cfg.SendGridFromEmail,
		FromName:       cfg.SendGridFromName,
		SendGridAPIKey: cfg.SendGridAPIKey,
	}
	if provider == notify.ProviderSES {
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		opts.SES = sesv2.NewFromConfig(awsCfg)
	}

	notifier, err := notify.NewLeadNotifier(opts, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: lead notifier: %w", err)
	}
	if notifier != nil {
		logger.Info("new lead notifications enabled", "provider", notifier.Provider())
	}
	return notifier, nil
}

// LoadAWSConfig centralizes AWS SDK initialization so LocalStack and
// production share the same wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}
	if endpoint := strings.TrimSpace(cfg.AWSEndpointOverride); endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}
	return awsCfg, nil
}
