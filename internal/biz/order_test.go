package biz

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tradeErrors "campus-trade/internal/errors"

	"github.com/go-kratos/kratos/v2/log"
)

// memStore 内存版交易存储，模拟数据层的事务语义：
// 每个操作持锁完成读改写，拒绝时不留下任何部分写入。
type memStore struct {
	mu       sync.Mutex
	orders   map[int64]*Order
	products map[int64]*Product
	users    map[int64]*User
	nextID   int64

	// dupRemaining > 0 时 CreateOrderReserving 返回订单号冲突错误
	dupRemaining int
}

func newMemStore() *memStore {
	return &memStore{
		orders:   make(map[int64]*Order),
		products: make(map[int64]*Product),
		users:    make(map[int64]*User),
	}
}

func (s *memStore) addProduct(p *Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

func (s *memStore) addUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

func (s *memStore) productStatus(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Status
}

func (s *memStore) setProductStatus(id int64, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id].Status = status
}

func (s *memStore) orderByID(id int64) *Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		cp := *o
		return &cp
	}
	return nil
}

// fakeTradeRepo TradeRepo 的内存实现
type fakeTradeRepo struct {
	store *memStore
}

func (r *fakeTradeRepo) CreateOrderReserving(ctx context.Context, order *Order) (*Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dupRemaining > 0 {
		s.dupRemaining--
		return nil, tradeErrors.NewDuplicateOrderNo()
	}

	product, ok := s.products[order.ProductID]
	if !ok || product.Status == ProductStatusDeleted {
		return nil, tradeErrors.NewProductNotFound()
	}
	if product.Status != ProductStatusAvailable {
		return nil, tradeErrors.NewProductUnavailable()
	}
	if product.UserID == order.BuyerID {
		return nil, tradeErrors.NewSelfTradeForbidden()
	}

	s.nextID++
	order.ID = s.nextID
	order.SellerID = product.UserID
	order.Status = OrderStatusPending
	order.CreateTime = time.Now()
	order.UpdateTime = order.CreateTime
	cp := *order
	s.orders[order.ID] = &cp

	product.Status = ProductStatusReserved
	snapshot := *product
	return &snapshot, nil
}

func (r *fakeTradeRepo) ConfirmOrder(ctx context.Context, orderID, callerID int64, party Party) (*Order, *Product, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, nil, false, tradeErrors.NewOrderNotFound()
	}
	switch party {
	case PartyBuyer:
		if order.BuyerID != callerID {
			return nil, nil, false, tradeErrors.NewOrderUnauthorized()
		}
	case PartySeller:
		if order.SellerID != callerID {
			return nil, nil, false, tradeErrors.NewOrderUnauthorized()
		}
	default:
		return nil, nil, false, tradeErrors.NewOrderUnauthorized()
	}

	completed, changed, err := ApplyConfirm(order, party)
	if err != nil {
		return nil, nil, false, err
	}

	var sold *Product
	if completed {
		if product, ok := s.products[order.ProductID]; ok && product.Status != ProductStatusDeleted {
			product.Status = ProductStatusSold
			snapshot := *product
			sold = &snapshot
		}
	}
	cp := *order
	return &cp, sold, changed, nil
}

func (r *fakeTradeRepo) CancelOrder(ctx context.Context, orderID, callerID int64) (*Order, *Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, nil, tradeErrors.NewOrderNotFound()
	}
	if order.PartyOf(callerID) == PartyNone {
		return nil, nil, tradeErrors.NewOrderUnauthorized()
	}
	if err := ApplyCancel(order); err != nil {
		return nil, nil, err
	}

	var restored *Product
	if product, ok := s.products[order.ProductID]; ok && product.Status != ProductStatusDeleted {
		product.Status = ProductStatusAvailable
		snapshot := *product
		restored = &snapshot
	}
	cp := *order
	return &cp, restored, nil
}

// fakeOrderRepo OrderRepo 的内存实现
type fakeOrderRepo struct {
	store *memStore
}

func (r *fakeOrderRepo) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return r.store.orderByID(id), nil
}

func (r *fakeOrderRepo) GetOrderByNo(ctx context.Context, orderNo string) (*Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderNo == orderNo {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) ListBuyerOrders(ctx context.Context, buyerID int64) ([]*Order, error) {
	return r.list(func(o *Order) bool { return o.BuyerID == buyerID }), nil
}

func (r *fakeOrderRepo) ListSellerOrders(ctx context.Context, sellerID int64) ([]*Order, error) {
	return r.list(func(o *Order) bool { return o.SellerID == sellerID }), nil
}

func (r *fakeOrderRepo) ListUserOrders(ctx context.Context, userID int64) ([]*Order, error) {
	return r.list(func(o *Order) bool { return o.BuyerID == userID || o.SellerID == userID }), nil
}

func (r *fakeOrderRepo) ListUserOrdersByStatus(ctx context.Context, userID int64, status int) ([]*Order, error) {
	return r.list(func(o *Order) bool {
		return (o.BuyerID == userID || o.SellerID == userID) && o.Status == status
	}), nil
}

func (r *fakeOrderRepo) list(match func(*Order) bool) []*Order {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*Order
	for _, o := range s.orders {
		if match(o) {
			cp := *o
			result = append(result, &cp)
		}
	}
	return result
}

func (r *fakeOrderRepo) GetUserOrderStats(ctx context.Context, userID int64) (*OrderStats, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &OrderStats{}
	for _, o := range s.orders {
		if o.BuyerID != userID && o.SellerID != userID {
			continue
		}
		switch o.Status {
		case OrderStatusPending:
			stats.Pending++
		case OrderStatusInProgress:
			stats.Processing++
		case OrderStatusCompleted:
			stats.Completed++
		case OrderStatusCancelled:
			stats.Cancelled++
		}
		if o.BuyerID == userID {
			stats.AsBuyer++
		}
		if o.SellerID == userID {
			stats.AsSeller++
		}
		stats.Total++
	}
	return stats, nil
}

func (r *fakeOrderRepo) PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for id, o := range s.orders {
		if o.Status == OrderStatusCancelled && o.CreateTime.Before(cutoff) {
			delete(s.orders, id)
			purged++
		}
	}
	return purged, nil
}

// fakeProductRepo ProductRepo 的内存实现
type fakeProductRepo struct {
	store *memStore
}

func (r *fakeProductRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) ListCategoryProducts(ctx context.Context, categoryID int64, page, size int) ([]*Product, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []*Product
	for _, p := range s.products {
		if p.CategoryID == categoryID && p.Status == ProductStatusAvailable {
			cp := *p
			items = append(items, &cp)
		}
	}
	return items, int64(len(items)), nil
}

func (r *fakeProductRepo) ListUserProducts(ctx context.Context, userID int64) ([]*Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []*Product
	for _, p := range s.products {
		if p.UserID == userID && p.Status == ProductStatusAvailable {
			cp := *p
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (r *fakeProductRepo) ListPopularProducts(ctx context.Context, page, size int) ([]*Product, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []*Product
	for _, p := range s.products {
		if p.Status == ProductStatusAvailable {
			cp := *p
			items = append(items, &cp)
		}
	}
	return items, int64(len(items)), nil
}

// fakeUserRepo UserRepo 的内存实现
type fakeUserRepo struct {
	store *memStore
}

func (r *fakeUserRepo) GetUser(ctx context.Context, id int64) (*User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

// fakeCacheStore CacheStore 的内存实现，记录删除轨迹并支持故障注入
type fakeCacheStore struct {
	mu          sync.Mutex
	data        map[string][]byte
	deletedKeys []string
	patterns    []string
	failSet     bool
	failGet     bool
	failDelete  bool
	failPattern bool
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{data: make(map[string][]byte)}
}

func (c *fakeCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("cache set failed")
	}
	bytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = bytes
	return nil
}

func (c *fakeCacheStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("cache get failed")
	}
	bytes, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(bytes, dest)
}

func (c *fakeCacheStore) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failDelete {
		return errors.New("cache delete failed")
	}
	for _, key := range keys {
		delete(c.data, key)
		c.deletedKeys = append(c.deletedKeys, key)
	}
	return nil
}

func (c *fakeCacheStore) DeleteByPattern(ctx context.Context, pattern string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failPattern {
		return 0, errors.New("cache pattern delete failed")
	}
	c.patterns = append(c.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	var n int64
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
			n++
		}
	}
	return n, nil
}

func (c *fakeCacheStore) deletedContains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.deletedKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (c *fakeCacheStore) evictionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deletedKeys) + len(c.patterns)
}

func (c *fakeCacheStore) patternsContain(pattern string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.patterns {
		if p == pattern {
			return true
		}
	}
	return false
}

// fakeSink NotificationSink 的内存实现
type fakeSink struct {
	mu     sync.Mutex
	events []*OrderEvent
	fail   bool
}

func (s *fakeSink) PublishOrderEvent(ctx context.Context, event *OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("publish failed")
	}
	s.events = append(s.events, event)
	return nil
}

func (s *fakeSink) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, 0, len(s.events))
	for _, e := range s.events {
		types = append(types, e.Type)
	}
	return types
}

type testEnv struct {
	store *memStore
	cache *fakeCacheStore
	sink  *fakeSink
	uc    *OrderUseCase
}

func newTestEnv() *testEnv {
	store := newMemStore()
	cache := newFakeCacheStore()
	sink := &fakeSink{}
	logger := log.NewStdLogger(io.Discard)
	uc := NewOrderUseCase(
		&fakeTradeRepo{store: store},
		&fakeOrderRepo{store: store},
		&fakeProductRepo{store: store},
		&fakeUserRepo{store: store},
		NewCacheInvalidator(cache, logger),
		sink,
		NewTradeConfig(nil),
		logger,
	)
	return &testEnv{store: store, cache: cache, sink: sink, uc: uc}
}

func (e *testEnv) seedTrade() {
	e.store.addUser(&User{ID: 100, Username: "buyer"})
	e.store.addUser(&User{ID: 200, Username: "seller"})
	e.store.addProduct(&Product{ID: 1, UserID: 200, CategoryID: 5, Title: "used bike", Price: 120, Status: ProductStatusAvailable})
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "campus pickup")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.Status != OrderStatusPending {
		t.Errorf("order status = %d, want %d", order.Status, OrderStatusPending)
	}
	if order.SellerID != 200 {
		t.Errorf("seller id = %d, want 200 (frozen from product owner)", order.SellerID)
	}
	if !strings.HasPrefix(order.OrderNo, "ORD") || len(order.OrderNo) != 21 {
		t.Errorf("unexpected order no format: %q", order.OrderNo)
	}
	if got := env.store.productStatus(1); got != ProductStatusReserved {
		t.Errorf("product status = %d, want %d", got, ProductStatusReserved)
	}

	if !env.cache.deletedContains("product_detail:1") {
		t.Error("product detail cache not evicted")
	}
	if !env.cache.deletedContains("user_products:200") {
		t.Error("seller product list cache not evicted")
	}
	if !env.cache.patternsContain("category_products:5:*") {
		t.Error("category list caches not evicted")
	}
	if !env.cache.patternsContain("popular_products:*") {
		t.Error("popular list caches not evicted")
	}

	if types := env.sink.eventTypes(); len(types) != 1 || types[0] != OrderEventCreated {
		t.Errorf("published events = %v, want [%s]", types, OrderEventCreated)
	}
}

func TestCreateOrderRejections(t *testing.T) {
	tests := []struct {
		name      string
		productID int64
		buyerID   int64
		setup     func(*testEnv)
		wantErr   func(error) bool
	}{
		{
			name:      "product missing",
			productID: 99,
			buyerID:   100,
			wantErr:   tradeErrors.IsProductNotFound,
		},
		{
			name:      "product deleted",
			productID: 2,
			buyerID:   100,
			setup: func(e *testEnv) {
				e.store.addProduct(&Product{ID: 2, UserID: 200, Status: ProductStatusDeleted})
			},
			wantErr: tradeErrors.IsProductNotFound,
		},
		{
			name:      "product reserved",
			productID: 3,
			buyerID:   100,
			setup: func(e *testEnv) {
				e.store.addProduct(&Product{ID: 3, UserID: 200, Status: ProductStatusReserved})
			},
			wantErr: tradeErrors.IsProductUnavailable,
		},
		{
			name:      "product sold",
			productID: 4,
			buyerID:   100,
			setup: func(e *testEnv) {
				e.store.addProduct(&Product{ID: 4, UserID: 200, Status: ProductStatusSold})
			},
			wantErr: tradeErrors.IsProductUnavailable,
		},
		{
			name:      "self trade",
			productID: 1,
			buyerID:   200,
			wantErr:   tradeErrors.IsSelfTradeForbidden,
		},
		{
			name:      "buyer missing",
			productID: 1,
			buyerID:   999,
			wantErr:   tradeErrors.IsUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.seedTrade()
			if tt.setup != nil {
				tt.setup(env)
			}
			_, err := env.uc.CreateOrder(context.Background(), tt.productID, tt.buyerID, 10, "")
			if err == nil || !tt.wantErr(err) {
				t.Fatalf("CreateOrder error = %v, want matching rejection", err)
			}
			if len(env.sink.eventTypes()) != 0 {
				t.Error("rejected create should not publish events")
			}
		})
	}
}

func TestCreateOrderSelfTradeKeepsProductAvailable(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	_, err := env.uc.CreateOrder(context.Background(), 1, 200, 120, "")
	if err == nil || !tradeErrors.IsSelfTradeForbidden(err) {
		t.Fatalf("CreateOrder error = %v, want self trade forbidden", err)
	}
	if got := env.store.productStatus(1); got != ProductStatusAvailable {
		t.Errorf("product status = %d, want still available", got)
	}
}

func TestCreateOrderRetriesOnOrderNoCollision(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()
	env.store.dupRemaining = 2

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder should succeed after regenerating order no: %v", err)
	}
	if order.ID == 0 {
		t.Error("order not persisted")
	}
}

func TestCreateOrderGivesUpAfterMaxCollisions(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()
	env.store.dupRemaining = NewTradeConfig(nil).OrderNoMaxRetry

	_, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err == nil || !tradeErrors.IsDuplicateOrderNo(err) {
		t.Fatalf("CreateOrder error = %v, want duplicate order no after exhausting retries", err)
	}
}

func TestCreateOrderConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv()
	env.store.addProduct(&Product{ID: 1, UserID: 200, CategoryID: 5, Status: ProductStatusAvailable})
	env.store.addUser(&User{ID: 200, Username: "seller"})
	const buyers = 8
	for i := int64(0); i < buyers; i++ {
		env.store.addUser(&User{ID: 1000 + i})
	}

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.uc.CreateOrder(context.Background(), 1, int64(1000+i), 50, "")
		}(i)
	}
	wg.Wait()

	var successes, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case tradeErrors.IsProductUnavailable(err):
			unavailable++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
	if unavailable != buyers-1 {
		t.Errorf("unavailable rejections = %d, want %d", unavailable, buyers-1)
	}
	if got := env.store.productStatus(1); got != ProductStatusReserved {
		t.Errorf("product status = %d, want reserved", got)
	}
}

func TestConfirmOrderDualConfirmationCompletes(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if err := env.uc.ConfirmOrderByBuyer(context.Background(), order.ID, 100); err != nil {
		t.Fatalf("buyer confirm failed: %v", err)
	}
	if got := env.store.orderByID(order.ID); got.Status != OrderStatusInProgress {
		t.Errorf("after one confirm status = %d, want in progress", got.Status)
	}
	if got := env.store.productStatus(1); got != ProductStatusReserved {
		t.Errorf("product status = %d, want still reserved", got)
	}

	if err := env.uc.ConfirmOrderBySeller(context.Background(), order.ID, 200); err != nil {
		t.Fatalf("seller confirm failed: %v", err)
	}
	got := env.store.orderByID(order.ID)
	if got.Status != OrderStatusCompleted {
		t.Errorf("after dual confirm status = %d, want completed", got.Status)
	}
	if !got.BuyerConfirm || !got.SellerConfirm {
		t.Errorf("confirm flags = %v/%v, want both set", got.BuyerConfirm, got.SellerConfirm)
	}
	if ps := env.store.productStatus(1); ps != ProductStatusSold {
		t.Errorf("product status = %d, want sold", ps)
	}

	types := env.sink.eventTypes()
	want := []string{OrderEventCreated, OrderEventConfirmed, OrderEventCompleted}
	if len(types) != len(want) {
		t.Fatalf("published events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("published events = %v, want %v", types, want)
		}
	}
}

func TestConfirmOrderRejections(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// 非订单参与方
	if err := env.uc.ConfirmOrderByBuyer(context.Background(), order.ID, 999); !tradeErrors.IsOrderUnauthorized(err) {
		t.Errorf("stranger confirm error = %v, want unauthorized", err)
	}
	// 卖家以买家身份确认
	if err := env.uc.ConfirmOrderByBuyer(context.Background(), order.ID, 200); !tradeErrors.IsOrderUnauthorized(err) {
		t.Errorf("seller-as-buyer confirm error = %v, want unauthorized", err)
	}
	// 订单不存在
	if err := env.uc.ConfirmOrderByBuyer(context.Background(), 9999, 100); !tradeErrors.IsOrderNotFound(err) {
		t.Errorf("missing order confirm error = %v, want not found", err)
	}

	// 已取消订单不可确认
	if err := env.uc.CancelOrder(context.Background(), order.ID, 100); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := env.uc.ConfirmOrderByBuyer(context.Background(), order.ID, 100); !tradeErrors.IsOrderCancelled(err) {
		t.Errorf("confirm cancelled error = %v, want order cancelled", err)
	}
}

func TestConfirmOrderIdempotentPerParty(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := env.uc.ConfirmOrderByBuyer(context.Background(), order.ID, 100); err != nil {
			t.Fatalf("repeated buyer confirm #%d failed: %v", i+1, err)
		}
	}
	got := env.store.orderByID(order.ID)
	if got.Status != OrderStatusInProgress {
		t.Errorf("status = %d, want in progress (one-sided confirms never complete)", got.Status)
	}
	if ps := env.store.productStatus(1); ps != ProductStatusReserved {
		t.Errorf("product status = %d, want still reserved", ps)
	}
}

func TestConfirmOrderRepeatPublishesNoDuplicateEvents(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if err := env.uc.ConfirmOrderByBuyer(context.Background(), order.ID, 100); err != nil {
		t.Fatalf("buyer confirm failed: %v", err)
	}
	if err := env.uc.ConfirmOrderByBuyer(context.Background(), order.ID, 100); err != nil {
		t.Fatalf("repeated buyer confirm failed: %v", err)
	}
	types := env.sink.eventTypes()
	if len(types) != 2 || types[1] != OrderEventConfirmed {
		t.Errorf("events after repeated one-sided confirm = %v, want exactly one confirm", types)
	}

	if err := env.uc.ConfirmOrderBySeller(context.Background(), order.ID, 200); err != nil {
		t.Fatalf("seller confirm failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := env.uc.ConfirmOrderByBuyer(context.Background(), order.ID, 100); err != nil {
			t.Fatalf("confirm on completed order #%d failed: %v", i+1, err)
		}
	}
	types = env.sink.eventTypes()
	if len(types) != 3 || types[2] != OrderEventCompleted {
		t.Errorf("events after confirms on completed order = %v, want a single completion", types)
	}
}

func TestConfirmOrderCompletesWhenProductDeleted(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if err := env.uc.ConfirmOrderByBuyer(context.Background(), order.ID, 100); err != nil {
		t.Fatalf("buyer confirm failed: %v", err)
	}

	// 商品在双方确认之间被独立删除
	env.store.setProductStatus(1, ProductStatusDeleted)
	evictionsBefore := env.cache.evictionCount()

	if err := env.uc.ConfirmOrderBySeller(context.Background(), order.ID, 200); err != nil {
		t.Fatalf("seller confirm failed: %v", err)
	}
	got := env.store.orderByID(order.ID)
	if got.Status != OrderStatusCompleted {
		t.Errorf("order status = %d, want completed", got.Status)
	}
	if ps := env.store.productStatus(1); ps != ProductStatusDeleted {
		t.Errorf("product status = %d, want still deleted", ps)
	}

	types := env.sink.eventTypes()
	if types[len(types)-1] != OrderEventCompleted {
		t.Errorf("last event = %q, want %q", types[len(types)-1], OrderEventCompleted)
	}
	if env.cache.evictionCount() != evictionsBefore {
		t.Error("no eviction should be issued for a deleted product")
	}
}

func TestCancelOrderSkipsDeletedProduct(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	env.store.setProductStatus(1, ProductStatusDeleted)
	evictionsBefore := env.cache.evictionCount()

	if err := env.uc.CancelOrder(context.Background(), order.ID, 100); err != nil {
		t.Fatalf("cancel with deleted product failed: %v", err)
	}
	if got := env.store.orderByID(order.ID); got.Status != OrderStatusCancelled {
		t.Errorf("order status = %d, want cancelled", got.Status)
	}
	if ps := env.store.productStatus(1); ps != ProductStatusDeleted {
		t.Errorf("product status = %d, want still deleted (never restored to available)", ps)
	}

	types := env.sink.eventTypes()
	if types[len(types)-1] != OrderEventCancelled {
		t.Errorf("last event = %q, want %q", types[len(types)-1], OrderEventCancelled)
	}
	if env.cache.evictionCount() != evictionsBefore {
		t.Error("no eviction should be issued for a deleted product")
	}
}

func TestCancelOrderRestoresProduct(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if err := env.uc.CancelOrder(context.Background(), order.ID, 200); err != nil {
		t.Fatalf("seller cancel failed: %v", err)
	}
	if got := env.store.orderByID(order.ID); got.Status != OrderStatusCancelled {
		t.Errorf("order status = %d, want cancelled", got.Status)
	}
	if ps := env.store.productStatus(1); ps != ProductStatusAvailable {
		t.Errorf("product status = %d, want available again", ps)
	}
	types := env.sink.eventTypes()
	if types[len(types)-1] != OrderEventCancelled {
		t.Errorf("last event = %s, want %s", types[len(types)-1], OrderEventCancelled)
	}
}

func TestCancelOrderRejections(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if err := env.uc.CancelOrder(context.Background(), order.ID, 999); !tradeErrors.IsOrderUnauthorized(err) {
		t.Errorf("stranger cancel error = %v, want unauthorized", err)
	}
	if err := env.uc.CancelOrder(context.Background(), 9999, 100); !tradeErrors.IsOrderNotFound(err) {
		t.Errorf("missing order cancel error = %v, want not found", err)
	}

	// 已完成订单不可取消
	if err := env.uc.ConfirmOrderByBuyer(context.Background(), order.ID, 100); err != nil {
		t.Fatalf("buyer confirm failed: %v", err)
	}
	if err := env.uc.ConfirmOrderBySeller(context.Background(), order.ID, 200); err != nil {
		t.Fatalf("seller confirm failed: %v", err)
	}
	if err := env.uc.CancelOrder(context.Background(), order.ID, 100); !tradeErrors.IsInvalidStateTransition(err) {
		t.Errorf("cancel completed error = %v, want invalid state transition", err)
	}
	if ps := env.store.productStatus(1); ps != ProductStatusSold {
		t.Errorf("product status = %d, want still sold", ps)
	}
}

func TestGetOrderDetailVisibility(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	for _, userID := range []int64{100, 200} {
		got, err := env.uc.GetOrderDetail(context.Background(), order.ID, userID)
		if err != nil {
			t.Fatalf("GetOrderDetail(%d) failed: %v", userID, err)
		}
		if got.OrderNo != order.OrderNo {
			t.Errorf("order no = %q, want %q", got.OrderNo, order.OrderNo)
		}
	}

	if _, err := env.uc.GetOrderDetail(context.Background(), order.ID, 999); !tradeErrors.IsOrderUnauthorized(err) {
		t.Errorf("stranger detail error = %v, want unauthorized", err)
	}
	if _, err := env.uc.GetOrderDetail(context.Background(), 9999, 100); !tradeErrors.IsOrderNotFound(err) {
		t.Errorf("missing order detail error = %v, want not found", err)
	}

	byNo, err := env.uc.GetOrderByOrderNo(context.Background(), order.OrderNo, 100)
	if err != nil {
		t.Fatalf("GetOrderByOrderNo failed: %v", err)
	}
	if byNo.ID != order.ID {
		t.Errorf("order id = %d, want %d", byNo.ID, order.ID)
	}
	if _, err := env.uc.GetOrderByOrderNo(context.Background(), "ORD00000000000000000", 100); !tradeErrors.IsOrderNotFound(err) {
		t.Errorf("missing order by no error = %v, want not found", err)
	}
}

func TestCreateOrderTolerantOfCacheAndSinkFailures(t *testing.T) {
	env := newTestEnv()
	env.seedTrade()
	env.cache.failDelete = true
	env.cache.failPattern = true
	env.sink.fail = true

	order, err := env.uc.CreateOrder(context.Background(), 1, 100, 120, "")
	if err != nil {
		t.Fatalf("CreateOrder must not fail on cache/sink errors: %v", err)
	}
	if got := env.store.orderByID(order.ID); got == nil {
		t.Fatal("order not persisted")
	}
	if got := env.store.productStatus(1); got != ProductStatusReserved {
		t.Errorf("product status = %d, want reserved", got)
	}
}

func TestPurgeCancelledOrders(t *testing.T) {
	env := newTestEnv()
	old := time.Now().Add(-100 * 24 * time.Hour)
	env.store.orders[1] = &Order{ID: 1, Status: OrderStatusCancelled, CreateTime: old}
	env.store.orders[2] = &Order{ID: 2, Status: OrderStatusCancelled, CreateTime: time.Now()}
	env.store.orders[3] = &Order{ID: 3, Status: OrderStatusCompleted, CreateTime: old}

	n, err := env.uc.PurgeCancelledOrders(context.Background())
	if err != nil {
		t.Fatalf("PurgeCancelledOrders failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
	if env.store.orderByID(1) != nil {
		t.Error("old cancelled order should be purged")
	}
	if env.store.orderByID(2) == nil || env.store.orderByID(3) == nil {
		t.Error("recent cancelled and completed orders must be kept")
	}
}
