package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"

	"github.com/stretchr/testify/mock"
)

// Mock implementations

type mockIMSClient struct {
	mock.Mock
}

func (m *mockIMSClient) FindSellers(ctx context.Context, sellerNumber string) ([]domain.SellerRecord, error) {
	args := m.Called(ctx, sellerNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SellerRecord), args.Error(1)
}

func (m *mockIMSClient) ListProducts(ctx context.Context) ([]domain.SourceProduct, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SourceProduct), args.Error(1)
}

func (m *mockIMSClient) ListTradeItems(ctx context.Context, productNumber string) ([]domain.TradeItem, error) {
	args := m.Called(ctx, productNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TradeItem), args.Error(1)
}

func (m *mockIMSClient) ListAttachments(ctx context.Context, tradeItemID int64) ([]domain.Attachment, error) {
	args := m.Called(ctx, tradeItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attachment), args.Error(1)
}

type staticIMSFactory struct {
	client ports.IMSClient
	err    error
}

func (f *staticIMSFactory) NewClient(ctx context.Context) (ports.IMSClient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type mockStorefront struct {
	mock.Mock
}

func (m *mockStorefront) FindProductsByHandle(ctx context.Context, handle string) ([]domain.StorefrontProduct, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StorefrontProduct), args.Error(1)
}

func (m *mockStorefront) CreateProduct(ctx context.Context, product *domain.TargetProduct) (*domain.StorefrontProduct, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StorefrontProduct), args.Error(1)
}

func (m *mockStorefront) CreateImage(ctx context.Context, productID uint64, image domain.TargetImage) (*domain.StorefrontImage, error) {
	args := m.Called(ctx, productID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StorefrontImage), args.Error(1)
}

// memoryStorefront is a stateful storefront keyed by handle
type memoryStorefront struct {
	mu       sync.Mutex
	nextID   uint64
	products map[string]*domain.TargetProduct
	ids      map[string]uint64
	created  []string
	images   map[uint64][]domain.TargetImage
}

func newMemoryStorefront() *memoryStorefront {
	return &memoryStorefront{
		nextID:   1000,
		products: map[string]*domain.TargetProduct{},
		ids:      map[string]uint64{},
		images:   map[uint64][]domain.TargetImage{},
	}
}

func (s *memoryStorefront) FindProductsByHandle(ctx context.Context, handle string) ([]domain.StorefrontProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[handle]
	if !ok {
		return nil, nil
	}
	return []domain.StorefrontProduct{{ID: s.ids[handle], Handle: handle, Title: p.Title}}, nil
}

func (s *memoryStorefront) CreateProduct(ctx context.Context, product *domain.TargetProduct) (*domain.StorefrontProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.Handle]; ok {
		return nil, errors.New("handle already taken")
	}
	s.nextID++
	s.products[product.Handle] = product
	s.ids[product.Handle] = s.nextID
	s.created = append(s.created, product.Handle)
	s.images[s.nextID] = append(s.images[s.nextID], product.Images...)
	return &domain.StorefrontProduct{ID: s.nextID, Handle: product.Handle, Title: product.Title}, nil
}

func (s *memoryStorefront) CreateImage(ctx context.Context, productID uint64, image domain.TargetImage) (*domain.StorefrontImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[productID] = append(s.images[productID], image)
	return &domain.StorefrontImage{ID: uint64(len(s.images[productID])), ProductID: productID, Src: image.Src}, nil
}

type staticStorefrontFactory struct {
	client      ports.StorefrontClient
	err         error
	seller      *domain.SellerConfig
	accessToken string
}

func (f *staticStorefrontFactory) NewClient(seller *domain.SellerConfig, accessToken string) (ports.StorefrontClient, error) {
	f.seller = seller
	f.accessToken = accessToken
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Save(ctx context.Context, session *domain.InstallSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionStore) Consume(ctx context.Context, shop string) (*domain.InstallSession, error) {
	args := m.Called(ctx, shop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstallSession), args.Error(1)
}

// memorySessionStore keeps at most one session per shop and deletes it on consume
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.InstallSession
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[string]domain.InstallSession{}}
}

func (s *memorySessionStore) Save(ctx context.Context, session *domain.InstallSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Shop] = *session
	return nil
}

func (s *memorySessionStore) Consume(ctx context.Context, shop string) (*domain.InstallSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[shop]
	if !ok {
		return nil, nil
	}
	delete(s.sessions, shop)
	return &session, nil
}

type mockShopRepository struct {
	mock.Mock
}

func (m *mockShopRepository) SaveCredential(ctx context.Context, cred *domain.ShopCredential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *mockShopRepository) GetCredential(ctx context.Context, shop string) (*domain.ShopCredential, error) {
	args := m.Called(ctx, shop)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShopCredential), args.Error(1)
}

type mockSyncRunRepository struct {
	mock.Mock
}

func (m *mockSyncRunRepository) SaveRun(ctx context.Context, report *domain.SyncReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockSyncRunRepository) LatestRun(ctx context.Context, sellerNumber string) (*domain.SyncReport, error) {
	args := m.Called(ctx, sellerNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncReport), args.Error(1)
}

type mockOAuth struct {
	mock.Mock
}

func (m *mockOAuth) VerifyQuery(query url.Values) bool {
	args := m.Called(query)
	return args.Bool(0)
}

func (m *mockOAuth) AuthorizeURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	args := m.Called(shop, scopes, redirectURI, state)
	return args.String(0), args.Error(1)
}

func (m *mockOAuth) ExchangeToken(ctx context.Context, shop string, code string) (*domain.AccessGrant, error) {
	args := m.Called(ctx, shop, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessGrant), args.Error(1)
}

// prefixEncryption is a reversible stand-in for the AES service
type prefixEncryption struct{}

func (prefixEncryption) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("empty plaintext")
	}
	return "enc:" + plaintext, nil
}

func (prefixEncryption) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "enc:") {
		return "", errors.New("not encrypted")
	}
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	states   []domain.InstallState
	products map[domain.SyncStatus]int
	runs     int
	runErrs  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{products: map[domain.SyncStatus]int{}}
}

func (m *recordingMetrics) InstallTransition(state domain.InstallState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
}

func (m *recordingMetrics) ProductSynced(status domain.SyncStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[status]++
}

func (m *recordingMetrics) SyncRunFinished(report *domain.SyncReport, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	if err != nil {
		m.runErrs++
	}
}

func strPtr(s string) *string {
	return &s
}
