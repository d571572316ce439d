package core

import (
	"context"

	"github.com/JonMunkholm/proset/internal/logging"
)

// Export projects every product of vendor onto sheet rows with an empty
// report column, in store order. It writes nothing.
func (s *Service) Export(ctx context.Context, vendor string) ([]Row, error) {
	products, err := s.Products(ctx, vendor)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(products))
	for i, p := range products {
		rows[i] = RowFromProduct(p)
	}

	logging.FromContext(ctx).Info("export complete", "vendor", vendor, "rows", len(rows))
	return rows, nil
}
