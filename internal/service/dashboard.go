package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hackathonone/sentiment-backend/internal/store"
)

type DashboardStatsDto struct {
	VendedorID uuid.UUID `json:"vendedor_id"`
	StatsReportDto
	TotalProdutos         int64  `json:"total_produtos"`
	NotificacoesPendentes int64  `json:"notificacoes_pendentes"`
	DataConsulta          string `json:"data_consulta"`
}

type ExportDto struct {
	VendedorID     uuid.UUID          `json:"vendedor_id"`
	DataExportacao string             `json:"data_exportacao"`
	Estatisticas   *DashboardStatsDto `json:"estatisticas"`
	Comentarios    []CommentDto       `json:"comentarios"`
}

// DashboardService builds the per-seller views.
type DashboardService interface {
	// Stats returns ErrCustomerNotFound for an unknown seller.
	Stats(ctx context.Context, sellerID uuid.UUID) (*DashboardStatsDto, error)
	// Export returns the seller statistics and every comment on the seller's products, newest first.
	Export(ctx context.Context, sellerID uuid.UUID) (*ExportDto, error)
}

type dashboardService struct {
	store      store.Store
	aggregator Aggregator
	now        func() time.Time
}

func NewDashboardService(s store.Store, aggregator Aggregator) DashboardService {
	return &dashboardService{store: s, aggregator: aggregator, now: time.Now}
}

func (d *dashboardService) Stats(ctx context.Context, sellerID uuid.UUID) (*DashboardStatsDto, error) {
	if _, err := d.store.FindCustomerByID(ctx, sellerID); err != nil {
		return nil, err
	}

	stats, err := d.aggregator.ComputeStats(ctx, Scope{SellerID: &sellerID})
	if err != nil {
		return nil, err
	}
	products, err := d.store.CountProductsBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	pending, err := d.store.CountPendingNotifications(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	return &DashboardStatsDto{
		VendedorID:            sellerID,
		StatsReportDto:        *stats,
		TotalProdutos:         products,
		NotificacoesPendentes: pending,
		DataConsulta:          d.now().Format(time.RFC3339),
	}, nil
}

func (d *dashboardService) Export(ctx context.Context, sellerID uuid.UUID) (*ExportDto, error) {
	stats, err := d.Stats(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	views, err := d.store.FindCommentsBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return &ExportDto{
		VendedorID:     sellerID,
		DataExportacao: d.now().Format(time.RFC3339),
		Estatisticas:   stats,
		Comentarios:    toCommentDtos(views),
	}, nil
}
