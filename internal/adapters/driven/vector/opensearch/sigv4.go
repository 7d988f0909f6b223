package opensearch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/opensearch-project/opensearch-go/v4/signer"
	requestsigner "github.com/opensearch-project/opensearch-go/v4/signer/awsv2"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// AWS signing service names.
const (
	ServiceServerless = "aoss"
	ServiceManaged    = "es"
)

// SigV4Config selects AWS request signing.
type SigV4Config struct {
	// Region is the AWS region of the domain or collection (required).
	Region string

	// Service is "aoss" for serverless collections or "es" for managed
	// domains (default: aoss).
	Service string

	// Credentials overrides the default AWS credential chain.
	Credentials aws.CredentialsProvider
}

func (s SigV4Config) service() string {
	if s.Service == "" {
		return ServiceServerless
	}
	return s.Service
}

func newSigner(ctx context.Context, cfg SigV4Config) (signer.Signer, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: sigv4 requires a region", domain.ErrInvalidInput)
	}
	service := cfg.service()
	if service != ServiceServerless && service != ServiceManaged {
		return nil, fmt.Errorf("%w: sigv4 service must be %s or %s (got %q)",
			domain.ErrInvalidInput, ServiceServerless, ServiceManaged, service)
	}

	awsCfg := aws.Config{Region: cfg.Region, Credentials: cfg.Credentials}
	if cfg.Credentials == nil {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		awsCfg = loaded
	}

	s, err := requestsigner.NewSignerWithService(awsCfg, service)
	if err != nil {
		return nil, fmt.Errorf("creating sigv4 signer: %w", err)
	}
	return s, nil
}
