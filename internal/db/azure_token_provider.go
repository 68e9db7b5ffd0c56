package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// AzurePostgreSQLScope is the Entra ID scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// azureTokenProvider fetches PostgreSQL tokens from any Azure credential.
type azureTokenProvider struct {
	credential azcore.TokenCredential
	desc       string
}

func (p *azureTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzurePostgreSQLScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *azureTokenProvider) String() string {
	return p.desc
}

// NewAzureServicePrincipalProvider authenticates with a client secret.
func NewAzureServicePrincipalProvider(tenantID, clientID, clientSecret string) (TokenProvider, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("azure service principal requires tenant ID, client ID and client secret: %w", pulse.ErrInvalidConfig)
	}
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return &azureTokenProvider{
		credential: cred,
		desc:       fmt.Sprintf("AzureServicePrincipal(tenant=%s, client=%s)", tenantID, clientID),
	}, nil
}

// NewAzureDefaultCredentialProvider uses DefaultAzureCredential: environment,
// workload identity, managed identity, then developer tool logins.
func NewAzureDefaultCredentialProvider() (TokenProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return &azureTokenProvider{credential: cred, desc: "AzureDefaultCredential"}, nil
}
