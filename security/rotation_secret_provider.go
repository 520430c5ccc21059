package security

import (
	"context"
	"fmt"
	"time"

	"github.com/AlpinAI/2ly-sub007/core"
)

// RotationDiagnostic reports a decrypt that had to fall back to a retired
// key, which is the signal that stored rows still need re-encryption.
type RotationDiagnostic struct {
	OccurredAt time.Time
	Operation  string
	ActiveKey  string
	UsedKey    string
	Error      string
}

type RotationObserver func(RotationDiagnostic)

// RotationSecretProvider chains the active key with retired key versions.
// Encryption always uses the active key; decryption tries the active key
// first and then each retired key in order, so rows sealed before a key
// rotation stay readable until they are rewritten.
type RotationSecretProvider struct {
	active   core.SecretProvider
	retired  []core.SecretProvider
	observer RotationObserver
	nowFn    func() time.Time
}

func NewRotationSecretProvider(active core.SecretProvider, retired ...core.SecretProvider) (*RotationSecretProvider, error) {
	if active == nil {
		return nil, fmt.Errorf("security: active secret provider is required")
	}
	kept := make([]core.SecretProvider, 0, len(retired))
	for _, provider := range retired {
		if provider != nil {
			kept = append(kept, provider)
		}
	}
	return &RotationSecretProvider{
		active:  active,
		retired: kept,
		nowFn:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithObserver registers a hook for fallback decrypts. Passing nil clears it.
func (p *RotationSecretProvider) WithObserver(observer RotationObserver) *RotationSecretProvider {
	if p != nil {
		p.observer = observer
	}
	return p
}

func (p *RotationSecretProvider) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	if p == nil || p.active == nil {
		return nil, fmt.Errorf("security: secret provider is nil")
	}
	return p.active.Encrypt(ctx, plaintext)
}

func (p *RotationSecretProvider) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	if p == nil || p.active == nil {
		return nil, fmt.Errorf("security: secret provider is nil")
	}
	plaintext, activeErr := p.active.Decrypt(ctx, ciphertext)
	if activeErr == nil {
		return plaintext, nil
	}
	for _, provider := range p.retired {
		plaintext, err := provider.Decrypt(ctx, ciphertext)
		if err != nil {
			continue
		}
		p.notify(RotationDiagnostic{
			OccurredAt: p.nowFn(),
			Operation:  "decrypt",
			ActiveKey:  providerKeyID(p.active),
			UsedKey:    providerKeyID(provider),
			Error:      activeErr.Error(),
		})
		return plaintext, nil
	}
	return nil, fmt.Errorf("security: no key version could decrypt the payload: %w", activeErr)
}

func (p *RotationSecretProvider) notify(diagnostic RotationDiagnostic) {
	if p == nil || p.observer == nil {
		return
	}
	p.observer(diagnostic)
}

func providerKeyID(provider core.SecretProvider) string {
	type keyed interface{ KeyID() string }
	if identified, ok := provider.(keyed); ok {
		return identified.KeyID()
	}
	return ""
}

var _ core.SecretProvider = (*RotationSecretProvider)(nil)
