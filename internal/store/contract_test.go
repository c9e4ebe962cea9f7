package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/hackathonone/sentiment-backend/internal/errors"
	"github.com/hackathonone/sentiment-backend/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract lists behaviors every Store implementation must share.
// Each case gets a fresh, empty store from newStore.
var storeContract = []struct {
	name string
	run  func(t *testing.T, s Store)
}{
	{"customers", testCustomers},
	{"products", testProducts},
	{"comments and notifications", testCommentsAndNotifications},
	{"results and tally", testResultsAndTally},
	{"delete in use", testDeleteInUse},
	{"long origin", testLongOrigin},
	{"concurrent mark read", testConcurrentMarkRead},
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	for _, tc := range storeContract {
		t.Run(tc.name, func(t *testing.T) {
			tc.run(t, newStore(t))
		})
	}
}

func mustCustomer(t *testing.T, s Store, name, email string, kind CustomerKind) *Customer {
	t.Helper()
	c, err := s.CreateCustomer(context.Background(), Customer{Name: name, Email: email, Kind: kind})
	require.NoError(t, err)
	return c
}

func mustProduct(t *testing.T, s Store, name, category string, sellerID uuid.UUID) *Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), Product{Name: name, Price: 19.9, Category: category, SellerID: sellerID})
	require.NoError(t, err)
	return p
}

func testCustomers(t *testing.T, s Store) {
	ctx := context.Background()

	ana := mustCustomer(t, s, "Ana", "ana@example.com", KindSeller)
	bruno := mustCustomer(t, s, "Bruno", "bruno@example.com", KindBuyer)
	assert.NotEqual(t, uuid.Nil, ana.ID)
	assert.False(t, ana.CreatedAt.IsZero())

	_, err := s.CreateCustomer(ctx, Customer{Name: "Other", Email: "ana@example.com", Kind: KindBuyer})
	require.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	found, err := s.FindCustomerByEmail(ctx, "bruno@example.com")
	require.NoError(t, err)
	assert.Equal(t, bruno.ID, found.ID)

	_, err = s.FindCustomerByID(ctx, uuid.New())
	require.ErrorIs(t, err, apperrors.ErrCustomerNotFound)

	sellers := KindSeller
	list, err := s.FindCustomers(ctx, &sellers)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ana.ID, list[0].ID)

	all, err := s.FindCustomers(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].Name)

	bruno.Email = "ana@example.com"
	_, err = s.UpdateCustomer(ctx, *bruno)
	require.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	bruno.Email = "bruno@shop.example"
	bruno.Name = "Bruno S."
	updated, err := s.UpdateCustomer(ctx, *bruno)
	require.NoError(t, err)
	assert.Equal(t, "Bruno S.", updated.Name)
	assert.Equal(t, "bruno@shop.example", updated.Email)

	require.NoError(t, s.DeleteCustomer(ctx, bruno.ID))
	require.ErrorIs(t, s.DeleteCustomer(ctx, bruno.ID), apperrors.ErrCustomerNotFound)
}

func testProducts(t *testing.T, s Store) {
	ctx := context.Background()
	seller := mustCustomer(t, s, "Loja", "loja@example.com", KindSeller)
	other := mustCustomer(t, s, "Outra", "outra@example.com", KindSeller)

	phone := mustProduct(t, s, "Smartphone X", "eletronicos", seller.ID)
	mustProduct(t, s, "Capa para smartphone", "acessorios", seller.ID)
	mustProduct(t, s, "Notebook", "eletronicos", other.ID)

	byName, err := s.FindProducts(ctx, ProductFilter{Name: "SMARTPHONE"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byCategory, err := s.FindProducts(ctx, ProductFilter{Category: "eletronicos"})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	bySeller, err := s.FindProducts(ctx, ProductFilter{SellerID: &seller.ID, Category: "eletronicos"})
	require.NoError(t, err)
	require.Len(t, bySeller, 1)
	assert.Equal(t, phone.ID, bySeller[0].ID)

	count, err := s.CountProductsBySeller(ctx, seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	phone.Price = 1299.5
	phone.Description = "128GB"
	updated, err := s.UpdateProduct(ctx, *phone)
	require.NoError(t, err)
	assert.InDelta(t, 1299.5, updated.Price, 0.001)
	assert.Equal(t, "128GB", updated.Description)

	_, err = s.UpdateProduct(ctx, Product{ID: uuid.New(), Name: "x", Price: 1, SellerID: seller.ID})
	require.ErrorIs(t, err, apperrors.ErrProductNotFound)

	require.NoError(t, s.DeleteProduct(ctx, phone.ID))
	_, err = s.FindProductByID(ctx, phone.ID)
	require.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func testCommentsAndNotifications(t *testing.T, s Store) {
	ctx := context.Background()
	seller := mustCustomer(t, s, "Loja", "loja@example.com", KindSeller)
	buyer := mustCustomer(t, s, "Carla", "carla@example.com", KindBuyer)
	product := mustProduct(t, s, "Fone", "audio", seller.ID)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rating := 1

	critical, err := s.CreateComment(ctx, NewComment{
		Comment: Comment{Text: "Quebrou no primeiro dia", Rating: &rating, Origin: "SITE", Language: "pt-BR", ProductID: product.ID, BuyerID: &buyer.ID, CreatedAt: base},
		Result:  SentimentResult{Text: "Quebrou no primeiro dia", Sentiment: sentiment.Negative, Probability: 0.92, Critical: true, Origin: "SITE"},
		Notification: &Notification{
			Message: "critico", Status: StatusPending, Channel: ChannelDashboard, SellerID: seller.ID,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Fone", critical.ProductName)
	assert.Equal(t, seller.ID, critical.SellerID)
	require.NotNil(t, critical.BuyerName)
	assert.Equal(t, "Carla", *critical.BuyerName)
	require.NotNil(t, critical.Rating)
	assert.Equal(t, 1, *critical.Rating)
	require.NotNil(t, critical.Result)
	assert.Equal(t, sentiment.Negative, critical.Result.Sentiment)
	assert.True(t, critical.Result.Critical)

	_, err = s.CreateComment(ctx, NewComment{
		Comment: Comment{Text: "Som muito bom", Origin: "SITE", Language: "pt-BR", ProductID: product.ID, CreatedAt: base.Add(time.Hour)},
		Result:  SentimentResult{Text: "Som muito bom", Sentiment: sentiment.Positive, Probability: 0.75, Origin: "SITE"},
	})
	require.NoError(t, err)

	_, err = s.CreateComment(ctx, NewComment{
		Comment: Comment{Text: "Produto inexistente", Origin: "SITE", Language: "pt-BR", ProductID: uuid.New()},
		Result:  SentimentResult{Text: "Produto inexistente", Sentiment: sentiment.Neutral, Probability: 0.5, Origin: "SITE"},
	})
	require.ErrorIs(t, err, apperrors.ErrProductNotFound)

	bySeller, err := s.FindCommentsBySeller(ctx, seller.ID)
	require.NoError(t, err)
	require.Len(t, bySeller, 2)
	assert.Equal(t, "Som muito bom", bySeller[0].Text, "newest first")
	assert.Nil(t, bySeller[0].BuyerName)

	byProduct, err := s.FindCommentsByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)

	found, err := s.FindCommentByID(ctx, critical.ID)
	require.NoError(t, err)
	assert.Equal(t, critical.Result.ID, found.Result.ID)

	// notifications
	pending, err := s.CountPendingNotifications(ctx, seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)

	list, err := s.FindNotificationsBySeller(ctx, seller.ID, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	n := list[0]
	assert.Equal(t, StatusPending, n.Status)
	assert.Equal(t, critical.Result.ID, n.ResultID)
	assert.Nil(t, n.SentAt)

	sentAt := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, s.MarkNotificationSent(ctx, n.ID, sentAt))

	read, err := s.MarkNotificationRead(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRead, read.Status)
	require.NotNil(t, read.SentAt)
	assert.True(t, sentAt.Equal(*read.SentAt))

	again, err := s.MarkNotificationRead(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRead, again.Status)

	_, err = s.MarkNotificationRead(ctx, uuid.New())
	require.ErrorIs(t, err, apperrors.ErrNotificationNotFound)

	changed, err := s.MarkAllNotificationsRead(ctx, seller.ID)
	require.NoError(t, err)
	assert.Zero(t, changed)

	pendingOnly, err := s.FindNotificationsBySeller(ctx, seller.ID, true)
	require.NoError(t, err)
	assert.Empty(t, pendingOnly)

	all, err := s.FindNotificationsBySeller(ctx, seller.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testResultsAndTally(t *testing.T, s Store) {
	ctx := context.Background()
	ms := func(v int64) *int64 { return &v }
	batch := "batch-1"

	seller := mustCustomer(t, s, "Loja", "loja@example.com", KindSeller)
	product := mustProduct(t, s, "Mesa", "moveis", seller.ID)
	_, err := s.CreateComment(ctx, NewComment{
		Comment: Comment{Text: "Mesa bamba", Origin: "SITE", Language: "pt-BR", ProductID: product.ID},
		Result:  SentimentResult{Text: "Mesa bamba", Sentiment: sentiment.Negative, Probability: 0.6, Origin: "SITE", ProcessingTimeMs: ms(30)},
	})
	require.NoError(t, err)

	early := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []SentimentResult{
		{Text: "Excelente", Sentiment: sentiment.Positive, Probability: 0.9, Origin: "API", ProcessingTimeMs: ms(10), AnalyzedAt: early},
		{Text: "Muito bom", Sentiment: sentiment.Positive, Probability: 0.7, Origin: "BATCH", BatchID: &batch, ProcessingTimeMs: ms(20)},
		{Text: "Normal", Sentiment: sentiment.Neutral, Probability: 0.5, Origin: "BATCH", BatchID: &batch},
	} {
		saved, err := s.SaveResult(ctx, r)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, saved.ID)
	}

	global, err := s.Tally(ctx, ResultFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, global.Total)
	assert.EqualValues(t, 2, global.Positive)
	assert.EqualValues(t, 1, global.Negative)
	assert.EqualValues(t, 1, global.Neutral)
	assert.InDelta(t, 1.6, global.PositiveProbabilitySum, 1e-9)
	assert.InDelta(t, 0.6, global.NegativeProbabilitySum, 1e-9)
	assert.EqualValues(t, 60, global.ProcessingTimeSumMs)
	assert.EqualValues(t, 3, global.ProcessingTimeCount)

	bySeller, err := s.Tally(ctx, ResultFilter{SellerID: &seller.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, bySeller.Total)
	assert.EqualValues(t, 1, bySeller.Negative)

	byBatch, err := s.Tally(ctx, ResultFilter{BatchID: &batch})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byBatch.Total)

	from := early.Add(time.Hour)
	recent, err := s.Tally(ctx, ResultFilter{From: &from})
	require.NoError(t, err)
	assert.EqualValues(t, 3, recent.Total)

	positive := sentiment.Positive
	results, err := s.FindResults(ctx, ResultFilter{Sentiment: &positive}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Muito bom", results[0].Text, "newest first")

	limited, err := s.FindResults(ctx, ResultFilter{}, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	otherSeller := uuid.New()
	empty, err := s.Tally(ctx, ResultFilter{SellerID: &otherSeller})
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func testDeleteInUse(t *testing.T, s Store) {
	ctx := context.Background()
	seller := mustCustomer(t, s, "Loja", "loja@example.com", KindSeller)
	product := mustProduct(t, s, "Cadeira", "moveis", seller.ID)
	_, err := s.CreateComment(ctx, NewComment{
		Comment: Comment{Text: "Confortável", Origin: "SITE", Language: "pt-BR", ProductID: product.ID},
		Result:  SentimentResult{Text: "Confortável", Sentiment: sentiment.Positive, Probability: 0.8, Origin: "SITE"},
	})
	require.NoError(t, err)

	require.ErrorIs(t, s.DeleteCustomer(ctx, seller.ID), apperrors.ErrCustomerInUse)
	require.ErrorIs(t, s.DeleteProduct(ctx, product.ID), apperrors.ErrProductInUse)
}

func testLongOrigin(t *testing.T, s Store) {
	ctx := context.Background()
	seller := mustCustomer(t, s, "Loja", "loja@example.com", KindSeller)
	product := mustProduct(t, s, "Lampada", "casa", seller.ID)
	origin := strings.Repeat("A", 50)

	created, err := s.CreateComment(ctx, NewComment{
		Comment: Comment{Text: "Ilumina bem", Origin: origin, Language: "pt-BR", ProductID: product.ID},
		Result:  SentimentResult{Text: "Ilumina bem", Sentiment: sentiment.Positive, Probability: 0.7, Origin: origin},
	})
	require.NoError(t, err)

	found, err := s.FindCommentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, origin, found.Origin)
	require.NotNil(t, found.Result)
	assert.Equal(t, origin, found.Result.Origin)
}

func testConcurrentMarkRead(t *testing.T, s Store) {
	ctx := context.Background()
	seller := mustCustomer(t, s, "Loja", "loja@example.com", KindSeller)
	product := mustProduct(t, s, "Geladeira", "eletro", seller.ID)

	const total = 8
	ids := make([]uuid.UUID, 0, total)
	for i := range total {
		text := fmt.Sprintf("Parou de gelar %d", i)
		_, err := s.CreateComment(ctx, NewComment{
			Comment: Comment{Text: text, Origin: "SITE", Language: "pt-BR", ProductID: product.ID},
			Result:  SentimentResult{Text: text, Sentiment: sentiment.Negative, Probability: 0.95, Critical: true, Origin: "SITE"},
			Notification: &Notification{
				Message: "critico", Status: StatusPending, Channel: ChannelDashboard, SellerID: seller.ID,
			},
		})
		require.NoError(t, err)
	}
	pending, err := s.FindNotificationsBySeller(ctx, seller.ID, true)
	require.NoError(t, err)
	require.Len(t, pending, total)
	for _, n := range pending {
		ids = append(ids, n.ID)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		changed int64
	)
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.MarkNotificationRead(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if n.Status != StatusRead {
				errs = append(errs, fmt.Errorf("notification %s has status %s", id, n.Status))
			}
		}()
	}
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.MarkAllNotificationsRead(ctx, seller.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			changed += n
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.LessOrEqual(t, changed, int64(total), "each notification flips to READ at most once")

	count, err := s.CountPendingNotifications(ctx, seller.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	all, err := s.FindNotificationsBySeller(ctx, seller.ID, false)
	require.NoError(t, err)
	require.Len(t, all, total)
	for _, n := range all {
		assert.Equal(t, StatusRead, n.Status)
	}

	again, err := s.MarkNotificationRead(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, StatusRead, again.Status)
}
