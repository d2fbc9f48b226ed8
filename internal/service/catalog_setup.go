package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// CatalogSetupInput is a declarative catalog definition: usage meters,
// features and products with prices, cross-referenced by slug. It is
// validated in full before any write so a bad setup never leaves partial
// state behind.
type CatalogSetupInput struct {
	UsageMeters []CatalogUsageMeterInput `json:"usage_meters"`
	Features    []CatalogFeatureInput    `json:"features"`
	Products    []CatalogProductInput    `json:"products"`
}

type CatalogUsageMeterInput struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type CatalogFeatureInput struct {
	Slug             string                 `json:"slug"`
	Name             string                 `json:"name"`
	FeatureType      types.FeatureType      `json:"feature_type"`
	Amount           int64                  `json:"amount,omitempty"`
	UsageMeterSlug   *string                `json:"usage_meter_slug,omitempty"`
	RenewalFrequency types.RenewalFrequency `json:"renewal_frequency,omitempty"`
}

type CatalogProductInput struct {
	Slug         string              `json:"slug"`
	Name         string              `json:"name"`
	FeatureSlugs []string            `json:"feature_slugs"`
	Prices       []CatalogPriceInput `json:"prices"`
}

type CatalogPriceInput struct {
	Slug       string `json:"slug"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
}

// CatalogSetupService validates catalog setup input. Duplicate slugs and
// dangling references surface as validation errors before any database
// mutation happens.
type CatalogSetupService interface {
	Validate(ctx context.Context, input CatalogSetupInput) error
}

type catalogSetupService struct {
	ServiceParams
}

func NewCatalogSetupService(params ServiceParams) CatalogSetupService {
	return &catalogSetupService{ServiceParams: params}
}

func (s *catalogSetupService) Validate(ctx context.Context, input CatalogSetupInput) error {
	meterSlugs := make(map[string]struct{}, len(input.UsageMeters))
	for _, meter := range input.UsageMeters {
		if meter.Slug == "" {
			return validationError("usage meter slug is required", nil)
		}
		if _, ok := meterSlugs[meter.Slug]; ok {
			return validationError(
				fmt.Sprintf("usage meter with slug %s already exists", meter.Slug),
				map[string]interface{}{"slug": meter.Slug})
		}
		meterSlugs[meter.Slug] = struct{}{}
	}

	featureSlugs := make(map[string]struct{}, len(input.Features))
	for _, feature := range input.Features {
		if feature.Slug == "" {
			return validationError("feature slug is required", nil)
		}
		if _, ok := featureSlugs[feature.Slug]; ok {
			return validationError(
				fmt.Sprintf("feature with slug %s already exists", feature.Slug),
				map[string]interface{}{"slug": feature.Slug})
		}
		featureSlugs[feature.Slug] = struct{}{}

		if feature.FeatureType == types.FeatureTypeUsageCreditGrant {
			meterSlug := lo.FromPtr(feature.UsageMeterSlug)
			if meterSlug == "" {
				return validationError(
					fmt.Sprintf("feature %s grants usage credits but has no usage meter", feature.Slug),
					map[string]interface{}{"slug": feature.Slug})
			}
			if _, ok := meterSlugs[meterSlug]; !ok {
				return validationError(
					fmt.Sprintf("usage meter with slug %s does not exist", meterSlug),
					map[string]interface{}{"feature_slug": feature.Slug, "usage_meter_slug": meterSlug})
			}
			if err := feature.RenewalFrequency.Validate(); err != nil {
				return err
			}
			if feature.Amount <= 0 {
				return validationError(
					fmt.Sprintf("feature %s must grant a positive credit amount", feature.Slug),
					map[string]interface{}{"slug": feature.Slug, "amount": feature.Amount})
			}
		}
	}

	productSlugs := make(map[string]struct{}, len(input.Products))
	priceSlugs := make(map[string]struct{})
	for _, product := range input.Products {
		if product.Slug == "" {
			return validationError("product slug is required", nil)
		}
		if _, ok := productSlugs[product.Slug]; ok {
			return validationError(
				fmt.Sprintf("product with slug %s already exists", product.Slug),
				map[string]interface{}{"slug": product.Slug})
		}
		productSlugs[product.Slug] = struct{}{}

		for _, featureSlug := range product.FeatureSlugs {
			if _, ok := featureSlugs[featureSlug]; !ok {
				return validationError(
					fmt.Sprintf("feature with slug %s does not exist", featureSlug),
					map[string]interface{}{"product_slug": product.Slug, "feature_slug": featureSlug})
			}
		}

		for _, price := range product.Prices {
			if price.Slug == "" {
				return validationError(
					fmt.Sprintf("price slug is required on product %s", product.Slug),
					map[string]interface{}{"product_slug": product.Slug})
			}
			if _, ok := priceSlugs[price.Slug]; ok {
				return validationError(
					fmt.Sprintf("price with slug %s already exists", price.Slug),
					map[string]interface{}{"slug": price.Slug})
			}
			priceSlugs[price.Slug] = struct{}{}
			if price.UnitAmount < 0 {
				return validationError(
					fmt.Sprintf("price %s has a negative unit amount", price.Slug),
					map[string]interface{}{"slug": price.Slug, "unit_amount": price.UnitAmount})
			}
		}
	}

	return nil
}

func validationError(message string, details map[string]interface{}) error {
	b := ierr.NewError(message)
	if details != nil {
		b = b.WithReportableDetails(details)
	}
	return b.Mark(ierr.ErrValidation)
}
