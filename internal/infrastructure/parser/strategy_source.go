package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"JobScanner/internal/config"
	"JobScanner/internal/domain"
	"JobScanner/internal/ports"
	"JobScanner/internal/scanner"
)

// StrategySource turns config-defined sites into source adapters backed by registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.AdapterCatalog = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
		now:      time.Now,
	}
}

// Adapters binds every enabled site to its strategy. Sites whose strategy is
// unknown are skipped and reported in the joined error; the rest still run.
func (s *StrategySource) Adapters() ([]ports.SourceAdapter, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	var (
		adapters []ports.SourceAdapter
		errs     []error
	)
	for _, site := range s.sites {
		if !site.IsEnabled() {
			s.debug("site disabled", "site", site.Name)
			continue
		}

		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			errs = append(errs, fmt.Errorf("site %s: %w", site.Name, err))
			continue
		}

		adapters = append(adapters, &siteAdapter{
			site:     site,
			strategy: strategy,
			company:  companyOf(site),
			now:      s.now,
		})
	}

	s.debug("adapters resolved", "enabled", len(adapters), "skipped", len(errs))
	return adapters, errors.Join(errs...)
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func companyOf(site config.SiteConfig) string {
	if site.Company != "" {
		return domain.CompanyDisplayName(site.Company)
	}
	return domain.CompanyDisplayName(site.Name)
}

// siteAdapter is one configured site bound to its scanner strategy.
type siteAdapter struct {
	site     config.SiteConfig
	strategy scanner.Scanner
	company  string
	now      func() time.Time
}

var (
	_ ports.SourceAdapter = (*siteAdapter)(nil)
	_ ports.RoleScoped    = (*siteAdapter)(nil)
)

func (a *siteAdapter) Name() string    { return a.site.Name }
func (a *siteAdapter) Company() string { return a.company }

func (a *siteAdapter) IdentityMode() domain.IdentityMode {
	if a.site.Identity == string(domain.IdentityByTitleLocation) {
		return domain.IdentityByTitleLocation
	}
	return domain.IdentityByURL
}

// Roles returns the site-specific role list, or nil to use the global one.
func (a *siteAdapter) Roles() []string {
	return a.site.Roles
}

// Fetch runs the strategy for the site with the lookback cutoff applied.
func (a *siteAdapter) Fetch(ctx context.Context, roles []string, lookback time.Duration) ([]domain.RawPosting, error) {
	if len(a.site.Roles) > 0 {
		roles = a.site.Roles
	}

	req := scanner.Request{
		SiteName: a.site.Name,
		Company:  a.company,
		BaseURL:  a.site.URL,
		Roles:    roles,
		Options:  a.site.Options,
		Facets:   a.site.Facets,
	}
	if lookback > 0 {
		req.Since = a.now().Add(-lookback)
	}

	return a.strategy.Scan(ctx, req)
}
