//go:build !linux

package artifact

func exchangePaths(a, b string) error {
	return errExchangeUnsupported
}
