package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"spurchat/model"
)

const pingTimeout = 10 * time.Second

// PingResult reports whether a provider accepted its credentials.
type PingResult struct {
	ProviderID string
	Valid      bool
	Kind       ErrorKind
	Err        error
}

// PingProvider validates a provider's credentials by calling Ping().
// Used at server startup so a bad key shows up before the first customer.
func PingProvider(ctx context.Context, providerID string, p model.Provider) PingResult {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return PingResult{
			ProviderID: providerID,
			Kind:       Classify(err),
			Err:        fmt.Errorf("connection failed: %w", err),
		}
	}
	return PingResult{ProviderID: providerID, Valid: true}
}

// ProviderModels is one provider's model listing.
type ProviderModels struct {
	ProviderID string
	Models     []model.ModelInfo
	Err        error
}

// FetchAllModels lists models from every provider concurrently. Results are
// sorted by provider ID; a failing provider reports its error in place.
func FetchAllModels(ctx context.Context, providers map[string]model.Provider) []ProviderModels {
	p := pool.NewWithResults[ProviderModels]().WithMaxGoroutines(4)

	for id, prov := range providers {
		p.Go(func() ProviderModels {
			models, err := prov.ListModels(ctx)
			if err != nil {
				return ProviderModels{ProviderID: id, Err: err}
			}
			return ProviderModels{ProviderID: id, Models: models}
		})
	}

	results := p.Wait()
	sort.Slice(results, func(i, j int) bool {
		return results[i].ProviderID < results[j].ProviderID
	})
	return results
}
