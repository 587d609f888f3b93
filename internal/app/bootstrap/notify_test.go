package bootstrap

import (
	"context"
	"testing"

	appconfig "github.com/wolfman30/leadgate/internal/config"
	"github.com/wolfman30/leadgate/internal/notify"
	"github.com/wolfman30/leadgate/pkg/logging"
)

func TestBuildLeadNotifier_DisabledWithoutRecipient(t *testing.T) {
	n, err := BuildLeadNotifier(context.Background(), &appconfig.Config{SendGridAPIKey: "SG.key"}, nil)
	if err != nil || n != nil {
		t.Fatalf("expected disabled notifier, got %v %v", n, err)
	}
}

func TestBuildLeadNotifier_SendGridNeedsKey(t *testing.T) {
	cfg := &appconfig.Config{LeadNotifyEmail: "owner@example.com", EmailProvider: "sendgrid"}
	n, err := BuildLeadNotifier(context.Background(), cfg, logging.New("error"))
	if err != nil || n != nil {
		t.Fatalf("expected disabled notifier, got %v %v", n, err)
	}
}

func TestBuildLeadNotifier_SendGrid(t *testing.T) {
	cfg := &appconfig.Config{
		LeadNotifyEmail:   "owner@example.com",
		EmailProvider:     "sendgrid",
		SendGridAPIKey:    "SG.key",
		SendGridFromEmail: "noreply@example.com",
	}
	n, err := BuildLeadNotifier(context.Background(), cfg, logging.New("error"))
	if err != nil || n == nil {
		t.Fatalf("expected notifier, got %v %v", n, err)
	}
	if n.Provider() != notify.ProviderSendGrid {
		t.Fatalf("expected sendgrid provider, got %s", n.Provider())
	}
}

func TestBuildLeadNotifier_SES(t *testing.T) {
	cfg := &appconfig.Config{
		LeadNotifyEmail:     "owner@example.com",
		EmailProvider:       "ses",
		SendGridFromEmail:   "noreply@example.com",
		AWSRegion:           "us-east-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}
	n, err := BuildLeadNotifier(context.Background(), cfg, logging.New("error"))
	if err != nil || n == nil {
		t.Fatalf("expected notifier, got %v %v", n, err)
	}
	if n.Provider() != notify.ProviderSES {
		t.Fatalf("expected ses provider, got %s", n.Provider())
	}
}

func TestBuildLeadNotifier_UnknownProvider(t *testing.T) {
	cfg := &appconfig.Config{LeadNotifyEmail: "owner@example.com", EmailProvider: "pigeon"}
	if _, err := BuildLeadNotifier(context.Background(), cfg, nil); !appconfig.IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestLoadAWSConfig_EndpointOverride(t *testing.T) {
	cfg := &appconfig.Config{
		AWSRegion:           "us-west-2",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}
	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if awsCfg.Region != "us-west-2" {
		t.Fatalf("expected region us-west-2, got %s", awsCfg.Region)
	}
	if awsCfg.BaseEndpoint == nil || *awsCfg.BaseEndpoint != "http://localhost:4566" {
		t.Fatalf("expected endpoint override, got %v", awsCfg.BaseEndpoint)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "test" {
		t.Fatalf("expected static credentials, got %v %v", creds, err)
	}
}
