package jobs

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"freestream-server/internal/model"
	"freestream-server/pkg/catalog"
)

// ServiceStore is the repository slice the bootstrap needs.
type ServiceStore interface {
	UpsertServices(ctx context.Context, services []model.Service, countryServices []model.CountryService) error
}

// CountriesClient fetches the per-country service lineups.
type CountriesClient interface {
	Countries(ctx context.Context) (map[string]catalog.Country, error)
}

// SeedServices populates the services and countries_services reference
// tables from the upstream /countries endpoint. Only services with a
// free-tier flag and not on the blacklist are kept; services shared across
// countries are written once.
func SeedServices(ctx context.Context, store ServiceStore, client CountriesClient, blacklist map[string]struct{}) error {
	countries, err := client.Countries(ctx)
	if err != nil {
		log.Error().Err(err).Msg("countries fetch failed")
		return err
	}

	codes := make([]string, 0, len(countries))
	for code := range countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var services []model.Service
	var countryServices []model.CountryService
	seen := map[string]struct{}{}
	for _, code := range codes {
		for _, svc := range countries[code].Services {
			if !svc.StreamingOptionTypes.Free {
				continue
			}
			if _, blacklisted := blacklist[strings.ToLower(svc.ID)]; blacklisted {
				continue
			}
			if _, ok := seen[svc.ID]; !ok {
				seen[svc.ID] = struct{}{}
				services = append(services, model.Service{
					ID:              svc.ID,
					Name:            svc.Name,
					HomePage:        svc.HomePage,
					ThemeColorCode:  svc.ThemeColorCode,
					LightThemeImage: svc.ImageSet.LightThemeImage,
					DarkThemeImage:  svc.ImageSet.DarkThemeImage,
					WhiteImage:      svc.ImageSet.WhiteImage,
				})
			}
			countryServices = append(countryServices, model.CountryService{CountryCode: code, ServiceID: svc.ID})
		}
	}

	if err := store.UpsertServices(ctx, services, countryServices); err != nil {
		log.Error().Err(err).Msg("services upsert failed")
		return err
	}
	log.Info().Int("services", len(services)).Int("country_services", len(countryServices)).
		Msg("service catalog seeded")
	return nil
}
