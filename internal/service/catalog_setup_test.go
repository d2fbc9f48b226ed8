package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/testutil"
	"github.com/lumenbill/lumenbill/internal/types"
)

type CatalogSetupServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CatalogSetupService
}

func TestCatalogSetupService(t *testing.T) {
	suite.Run(t, new(CatalogSetupServiceSuite))
}

func (s *CatalogSetupServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCatalogSetupService(testServiceParams(&s.BaseServiceTestSuite, testutil.NewFakeStripeGateway()))
}

func validCatalog() CatalogSetupInput {
	return CatalogSetupInput{
		UsageMeters: []CatalogUsageMeterInput{
			{Slug: "api-calls", Name: "API Calls"},
		},
		Features: []CatalogFeatureInput{
			{Slug: "sso", Name: "SSO", FeatureType: types.FeatureTypeToggle},
			{
				Slug:             "api-credits",
				Name:             "API Credits",
				FeatureType:      types.FeatureTypeUsageCreditGrant,
				Amount:           500,
				UsageMeterSlug:   lo.ToPtr("api-calls"),
				RenewalFrequency: types.RenewalFrequencyEveryBillingPeriod,
			},
		},
		Products: []CatalogProductInput{
			{
				Slug:         "starter",
				Name:         "Starter",
				FeatureSlugs: []string{"sso", "api-credits"},
				Prices: []CatalogPriceInput{
					{Slug: "starter-monthly", UnitAmount: 2900, Currency: "usd"},
				},
			},
		},
	}
}

func (s *CatalogSetupServiceSuite) TestValidCatalogPasses() {
	s.NoError(s.service.Validate(s.GetContext(), validCatalog()))
}

func (s *CatalogSetupServiceSuite) TestRejections() {
	tests := []struct {
		name   string
		mutate func(*CatalogSetupInput)
	}{
		{
			name: "duplicate usage meter slug",
			mutate: func(in *CatalogSetupInput) {
				in.UsageMeters = append(in.UsageMeters, CatalogUsageMeterInput{Slug: "api-calls", Name: "Dup"})
			},
		},
		{
			name: "empty usage meter slug",
			mutate: func(in *CatalogSetupInput) {
				in.UsageMeters = append(in.UsageMeters, CatalogUsageMeterInput{Name: "Anonymous"})
			},
		},
		{
			name: "duplicate feature slug",
			mutate: func(in *CatalogSetupInput) {
				in.Features = append(in.Features, CatalogFeatureInput{Slug: "sso", Name: "Dup", FeatureType: types.FeatureTypeToggle})
			},
		},
		{
			name: "grant feature without meter",
			mutate: func(in *CatalogSetupInput) {
				in.Features[1].UsageMeterSlug = nil
			},
		},
		{
			name: "grant feature with unknown meter",
			mutate: func(in *CatalogSetupInput) {
				in.Features[1].UsageMeterSlug = lo.ToPtr("tokens")
			},
		},
		{
			name: "grant feature with invalid renewal frequency",
			mutate: func(in *CatalogSetupInput) {
				in.Features[1].RenewalFrequency = "yearly"
			},
		},
		{
			name: "grant feature with non-positive amount",
			mutate: func(in *CatalogSetupInput) {
				in.Features[1].Amount = 0
			},
		},
		{
			name: "duplicate product slug",
			mutate: func(in *CatalogSetupInput) {
				in.Products = append(in.Products, CatalogProductInput{Slug: "starter", Name: "Dup"})
			},
		},
		{
			name: "product references unknown feature",
			mutate: func(in *CatalogSetupInput) {
				in.Products[0].FeatureSlugs = append(in.Products[0].FeatureSlugs, "ghost")
			},
		},
		{
			name: "duplicate price slug",
			mutate: func(in *CatalogSetupInput) {
				in.Products[0].Prices = append(in.Products[0].Prices, CatalogPriceInput{Slug: "starter-monthly", UnitAmount: 9900, Currency: "usd"})
			},
		},
		{
			name: "negative unit amount",
			mutate: func(in *CatalogSetupInput) {
				in.Products[0].Prices[0].UnitAmount = -1
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			input := validCatalog()
			tt.mutate(&input)
			err := s.service.Validate(s.GetContext(), input)
			s.Require().Error(err)
			s.True(ierr.IsValidation(err))
		})
	}
}
