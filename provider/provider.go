// Package provider lists the places video descriptors come from: the
// built-in catalog and Lua scripts in the providers directory.
package provider

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/coursecast/coursecast/catalog"
	"github.com/coursecast/coursecast/filesystem"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/provider/custom"
	"github.com/coursecast/coursecast/source"
	"github.com/coursecast/coursecast/util"
	"github.com/coursecast/coursecast/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/viper"
)

// CustomProviderExtension marks provider scripts in where.Providers().
const CustomProviderExtension = ".lua"

type Provider struct {
	ID           string
	Name         string
	IsCustom     bool
	CreateSource func() (source.Source, error)
}

func (p *Provider) String() string {
	return p.Name
}

func Builtins() []*Provider {
	return []*Provider{
		{
			ID:   catalog.Name,
			Name: catalog.Name,
			CreateSource: func() (source.Source, error) {
				return catalog.FromConfig(), nil
			},
		},
	}
}

// Customs lists the Lua scripts in where.Providers(). An unreadable
// directory yields none.
func Customs() []*Provider {
	providers, err := CustomProviders()
	if err != nil {
		log.Warnf("list custom providers: %v", err)
	}
	return providers
}

func CustomProviders() ([]*Provider, error) {
	dir := where.Providers()

	files, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var providers []*Provider
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != CustomProviderExtension {
			continue
		}

		path := filepath.Join(dir, f.Name())
		name := util.FileStem(f.Name())

		providers = append(providers, &Provider{
			ID:       custom.IDfromName(name),
			Name:     name,
			IsCustom: true,
			CreateSource: func() (source.Source, error) {
				return custom.LoadSource(path)
			},
		})
	}

	sort.Slice(providers, func(i, j int) bool {
		return providers[i].Name < providers[j].Name
	})

	return providers, nil
}

func All() []*Provider {
	return append(Builtins(), Customs()...)
}

// Get finds a provider by name, builtins first.
func Get(name string) (*Provider, bool) {
	return lo.Find(All(), func(p *Provider) bool {
		return p.Name == name
	})
}

// Default is the provider named by providers.default.
func Default() (*Provider, error) {
	name := viper.GetString(key.ProvidersDefault)
	if p, ok := Get(name); ok {
		return p, nil
	}

	names := lo.Map(All(), func(p *Provider, _ int) string { return p.Name })
	if similar := fuzzy.RankFindNormalizedFold(name, names); len(similar) > 0 {
		sort.Sort(similar)
		return nil, fmt.Errorf("unknown provider %q, did you mean %q?", name, similar[0].Target)
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}

// Result is the outcome of searching one provider.
type Result struct {
	Provider *Provider
	Videos   []*source.Video
}

// SearchAll queries every provider concurrently and returns the results in
// provider order. Failing providers are logged and skipped; the joined error
// is returned only when every provider failed.
func SearchAll(ctx context.Context, providers []*Provider, query string) ([]Result, error) {
	p := pool.NewWithResults[Result]().
		WithContext(ctx).
		WithMaxGoroutines(4)

	for _, provider := range providers {
		p.Go(func(ctx context.Context) (Result, error) {
			src, err := provider.CreateSource()
			if err != nil {
				return Result{}, fmt.Errorf("%s: %w", provider.Name, err)
			}

			videos, err := src.Search(ctx, query)
			if err != nil {
				return Result{}, fmt.Errorf("%s: %w", provider.Name, err)
			}

			return Result{Provider: provider, Videos: videos}, nil
		})
	}

	results, err := p.Wait()

	order := lo.Map(providers, func(p *Provider, _ int) string { return p.ID })
	sort.SliceStable(results, func(i, j int) bool {
		return lo.IndexOf(order, results[i].Provider.ID) < lo.IndexOf(order, results[j].Provider.ID)
	})

	if len(results) == 0 && err != nil {
		return nil, err
	}
	if err != nil {
		log.Warnf("search %q: %v", query, err)
	}

	return results, nil
}
