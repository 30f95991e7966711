package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Image upload modes
const (
	// ImageModeEmbedded sends the images inside the product create call
	ImageModeEmbedded = "embedded"
	// ImageModeAttach creates the product first, then one image per attachment
	ImageModeAttach = "attach"
)

var errNoTradeItems = errors.New("product has no trade items")

// SyncOptions configures the catalog sync
type SyncOptions struct {
	Concurrency int
	ImageMode   string
}

// CatalogSyncService projects the IMS catalog onto a seller's storefront
type CatalogSyncService struct {
	imsFactory    ports.IMSFactory
	storefronts   ports.StorefrontFactory
	resolver      *CredentialResolver
	shops         ports.ShopRepository
	runs          ports.SyncRunRepository
	encryptionSvc ports.EncryptionService
	metrics       ports.Metrics
	opts          SyncOptions
	logger        zerolog.Logger

	now func() time.Time
}

// NewCatalogSyncService creates a new catalog sync service. runs may be nil, in which
// case reports are not persisted.
func NewCatalogSyncService(
	imsFactory ports.IMSFactory,
	storefronts ports.StorefrontFactory,
	resolver *CredentialResolver,
	shops ports.ShopRepository,
	runs ports.SyncRunRepository,
	encryptionSvc ports.EncryptionService,
	metrics ports.Metrics,
	opts SyncOptions,
	logger zerolog.Logger,
) *CatalogSyncService {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.ImageMode == "" {
		opts.ImageMode = ImageModeEmbedded
	}
	return &CatalogSyncService{
		imsFactory:    imsFactory,
		storefronts:   storefronts,
		resolver:      resolver,
		shops:         shops,
		runs:          runs,
		encryptionSvc: encryptionSvc,
		metrics:       metrics,
		opts:          opts,
		logger:        logger,
		now:           time.Now,
	}
}

// Sync runs one synchronization pass for a seller. Only failures that prevent the run
// from starting are returned as errors; per-product failures are recorded in the report.
func (s *CatalogSyncService) Sync(ctx context.Context, sellerNumber string) (report *domain.SyncReport, err error) {
	startedAt := s.now()
	defer func() {
		s.metrics.SyncRunFinished(report, err)
	}()

	ims, err := s.imsFactory.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create IMS client: %w", err)
	}

	seller, err := s.resolver.Resolve(ctx, ims, sellerNumber)
	if err != nil {
		return nil, err
	}

	storefront, err := s.storefrontFor(ctx, seller)
	if err != nil {
		return nil, err
	}

	products, err := ims.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list IMS products: %w", err)
	}

	s.logger.Info().
		Str("sellerNumber", seller.SellerNumber).
		Str("shop", seller.ShopHost).
		Int("products", len(products)).
		Int("concurrency", s.opts.Concurrency).
		Msg("Starting catalog sync")

	outcomes := make([]domain.ProductOutcome, len(products))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, product := range products {
		g.Go(func() error {
			outcomes[i] = s.syncProduct(ctx, ims, storefront, product)
			return nil
		})
	}
	_ = g.Wait()

	report = &domain.SyncReport{
		SellerNumber: seller.SellerNumber,
		Shop:         seller.ShopHost,
		StartedAt:    startedAt,
		Outcomes:     make([]domain.ProductOutcome, 0, len(outcomes)),
	}
	for _, outcome := range outcomes {
		report.Record(outcome)
		s.metrics.ProductSynced(outcome.Status)
	}
	report.FinishedAt = s.now()

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, report); err != nil {
			s.logger.Error().Err(err).Str("sellerNumber", seller.SellerNumber).Msg("Failed to save sync report")
		}
	}

	s.logger.Info().
		Str("sellerNumber", seller.SellerNumber).
		Str("shop", seller.ShopHost).
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("duration", report.FinishedAt.Sub(startedAt)).
		Msg("Catalog sync finished")

	return report, nil
}

// storefrontFor builds a storefront client from the shop's stored credential
func (s *CatalogSyncService) storefrontFor(ctx context.Context, seller *domain.SellerConfig) (ports.StorefrontClient, error) {
	cred, err := s.shops.GetCredential(ctx, seller.ShopHost)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential for %s: %w", seller.ShopHost, err)
	}
	if cred == nil || cred.EncryptedToken == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrShopNotInstalled, seller.ShopHost)
	}

	token, err := s.encryptionSvc.Decrypt(cred.EncryptedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token for %s: %w", seller.ShopHost, err)
	}

	client, err := s.storefronts.NewClient(seller, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create storefront client for %s: %w", seller.ShopHost, err)
	}
	return client, nil
}

// syncProduct creates one product on the storefront unless its handle already exists
func (s *CatalogSyncService) syncProduct(ctx context.Context, ims ports.IMSClient, storefront ports.StorefrontClient, product domain.SourceProduct) domain.ProductOutcome {
	outcome := domain.ProductOutcome{ProductNumber: product.ProductNumber}
	logger := s.logger.With().Str("productNumber", product.ProductNumber).Logger()

	if product.ProductNumber == "" {
		return s.fail(logger, outcome, domain.SyncStageLookup, fmt.Errorf("%w: empty product number", domain.ErrInvalidRequest))
	}

	if existing, err := storefront.FindProductsByHandle(ctx, product.ProductNumber); err != nil {
		return s.fail(logger, outcome, domain.SyncStageLookup, err)
	} else if len(existing) > 0 {
		outcome.Status = domain.SyncStatusSkipped
		outcome.StorefrontID = existing[0].ID
		logger.Debug().Uint64("storefrontId", existing[0].ID).Msg("Product already on storefront, skipping")
		return outcome
	}

	target, stage, err := s.buildProduct(ctx, ims, product)
	if err != nil {
		return s.fail(logger, outcome, stage, err)
	}
	outcome.Variants = len(target.Variants)

	// Another run may have created the product while we were reading the IMS.
	if existing, err := storefront.FindProductsByHandle(ctx, product.ProductNumber); err != nil {
		return s.fail(logger, outcome, domain.SyncStageLookup, err)
	} else if len(existing) > 0 {
		outcome.Status = domain.SyncStatusSkipped
		outcome.StorefrontID = existing[0].ID
		outcome.Variants = 0
		logger.Info().Uint64("storefrontId", existing[0].ID).Msg("Product appeared on storefront during sync, skipping")
		return outcome
	}

	images := target.Images
	if s.opts.ImageMode == ImageModeAttach {
		target.Images = nil
	}

	created, err := storefront.CreateProduct(ctx, target)
	if err != nil {
		return s.fail(logger, outcome, domain.SyncStageCreate, err)
	}
	outcome.StorefrontID = created.ID

	if s.opts.ImageMode == ImageModeAttach {
		for _, image := range images {
			if _, err := storefront.CreateImage(ctx, created.ID, image); err != nil {
				return s.fail(logger, outcome, domain.SyncStageImages, fmt.Errorf("image %s: %w", image.FileName, err))
			}
			outcome.Images++
		}
	} else {
		outcome.Images = len(images)
	}

	outcome.Status = domain.SyncStatusCreated
	logger.Info().
		Uint64("storefrontId", created.ID).
		Int("variants", outcome.Variants).
		Int("images", outcome.Images).
		Msg("Product created on storefront")
	return outcome
}

// buildProduct assembles the storefront document of a product from its trade items and
// their attachments, in IMS listing order
func (s *CatalogSyncService) buildProduct(ctx context.Context, ims ports.IMSClient, product domain.SourceProduct) (*domain.TargetProduct, domain.SyncStage, error) {
	items, err := ims.ListTradeItems(ctx, product.ProductNumber)
	if err != nil {
		return nil, domain.SyncStageTradeItems, err
	}

	target := &domain.TargetProduct{
		Handle: product.ProductNumber,
		Title:  product.ProductName,
	}
	for _, item := range items {
		if item.ProductNumber != "" && item.ProductNumber != product.ProductNumber {
			s.logger.Debug().
				Str("productNumber", product.ProductNumber).
				Str("itemProductNumber", item.ProductNumber).
				Str("sku", item.StockKeepingUnit).
				Msg("Ignoring trade item of another product")
			continue
		}

		target.Variants = append(target.Variants, domain.NewTargetVariant(item))

		attachments, err := ims.ListAttachments(ctx, item.ID)
		if err != nil {
			return nil, domain.SyncStageAttachments, fmt.Errorf("trade item %d: %w", item.ID, err)
		}
		for _, attachment := range attachments {
			if attachment.PresignedURL == "" {
				s.logger.Warn().
					Int64("tradeItemId", item.ID).
					Str("fileName", attachment.FileName).
					Msg("Attachment has no URL, skipping")
				continue
			}
			target.Images = append(target.Images, domain.TargetImage{
				FileName: attachment.FileName,
				Src:      attachment.PresignedURL,
			})
		}
	}

	if len(target.Variants) == 0 {
		return nil, domain.SyncStageVariants, errNoTradeItems
	}
	return target, "", nil
}

func (s *CatalogSyncService) fail(logger zerolog.Logger, outcome domain.ProductOutcome, stage domain.SyncStage, err error) domain.ProductOutcome {
	syncErr := &domain.ProductSyncError{
		ProductNumber: outcome.ProductNumber,
		Stage:         stage,
		Err:           err,
	}

	event := logger.Error().Err(syncErr).Str("stage", string(stage))
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		event = event.Int("status", upstream.StatusCode).Str("body", upstream.Body)
	}
	event.Msg("Product sync failed")

	outcome.Status = domain.SyncStatusFailed
	outcome.Stage = stage
	outcome.Error = syncErr.Error()
	return outcome
}
