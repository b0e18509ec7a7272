//go:build !libpd

package libpd

import "github.com/justyntemme/unitylibpd/pkg/pd"

// New reports pd.ErrUnavailable. Build with -tags libpd to link the engine.
func New() (pd.Context, error) {
	return nil, pd.ErrUnavailable
}
