package ports

import "context"

// PnlAuthority fetches the externally reported P&L figure for a wallet, when
// one exists. The reported figure always takes precedence over the locally
// computed snapshot; nil means the authority has no entry for the wallet.
type PnlAuthority interface {
	FetchReportedPnl(ctx context.Context, wallet string) (*float64, error)
}
