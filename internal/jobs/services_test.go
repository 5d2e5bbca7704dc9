package jobs_test

import (
	"context"
	"errors"
	"testing"

	"freestream-server/internal/jobs"
	"freestream-server/internal/model"
	"freestream-server/pkg/catalog"
)

type fakeServiceStore struct {
	services        []model.Service
	countryServices []model.CountryService
	err             error
}

func (f *fakeServiceStore) UpsertServices(_ context.Context, services []model.Service, countryServices []model.CountryService) error {
	f.services = services
	f.countryServices = countryServices
	return f.err
}

type fakeCountries struct {
	countries map[string]catalog.Country
	err       error
}

func (f *fakeCountries) Countries(_ context.Context) (map[string]catalog.Country, error) {
	return f.countries, f.err
}

func freeService(id string) catalog.Service {
	return catalog.Service{
		ID:                   id,
		Name:                 "Name " + id,
		HomePage:             "https://" + id + ".example",
		StreamingOptionTypes: catalog.OptionTypes{Free: true},
	}
}

func TestSeedServicesKeepsOnlyFreeServices(t *testing.T) {
	paid := freeService("netflix")
	paid.StreamingOptionTypes = catalog.OptionTypes{Sub: true}
	client := &fakeCountries{countries: map[string]catalog.Country{
		"us": {CountryCode: "us", Services: []catalog.Service{freeService("tubi"), paid}},
	}}
	store := &fakeServiceStore{}

	if err := jobs.SeedServices(context.Background(), store, client, nil); err != nil {
		t.Fatal(err)
	}
	if len(store.services) != 1 || store.services[0].ID != "tubi" {
		t.Fatalf("expected only tubi kept, got %v", store.services)
	}
	if len(store.countryServices) != 1 {
		t.Fatalf("expected one country link, got %v", store.countryServices)
	}
}

func TestSeedServicesAppliesBlacklist(t *testing.T) {
	client := &fakeCountries{countries: map[string]catalog.Country{
		"us": {CountryCode: "us", Services: []catalog.Service{freeService("tubi"), freeService("Peacock")}},
	}}
	store := &fakeServiceStore{}
	blacklist := map[string]struct{}{"peacock": {}}

	if err := jobs.SeedServices(context.Background(), store, client, blacklist); err != nil {
		t.Fatal(err)
	}
	if len(store.services) != 1 || store.services[0].ID != "tubi" {
		t.Fatalf("expected blacklisted service dropped regardless of case, got %v", store.services)
	}
}

func TestSeedServicesDeduplicatesAcrossCountries(t *testing.T) {
	client := &fakeCountries{countries: map[string]catalog.Country{
		"ca": {CountryCode: "ca", Services: []catalog.Service{freeService("tubi")}},
		"us": {CountryCode: "us", Services: []catalog.Service{freeService("tubi")}},
	}}
	store := &fakeServiceStore{}

	if err := jobs.SeedServices(context.Background(), store, client, nil); err != nil {
		t.Fatal(err)
	}
	if len(store.services) != 1 {
		t.Fatalf("expected shared service written once, got %v", store.services)
	}
	if len(store.countryServices) != 2 {
		t.Fatalf("expected a link per country, got %v", store.countryServices)
	}
	// countries are walked in sorted order
	if store.countryServices[0].CountryCode != "ca" || store.countryServices[1].CountryCode != "us" {
		t.Errorf("unexpected link order: %v", store.countryServices)
	}
}

func TestSeedServicesSurfacesErrors(t *testing.T) {
	fetchErr := errors.New("unavailable")
	if err := jobs.SeedServices(context.Background(), &fakeServiceStore{}, &fakeCountries{err: fetchErr}, nil); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error surfaced, got %v", err)
	}

	upsertErr := errors.New("constraint violation")
	store := &fakeServiceStore{err: upsertErr}
	client := &fakeCountries{countries: map[string]catalog.Country{
		"us": {CountryCode: "us", Services: []catalog.Service{freeService("tubi")}},
	}}
	if err := jobs.SeedServices(context.Background(), store, client, nil); !errors.Is(err, upsertErr) {
		t.Fatalf("expected upsert error surfaced, got %v", err)
	}
}
