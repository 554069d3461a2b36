package interfaces

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests against the quote API.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with query parameters.
	// Returns the response body as bytes or an error.
	Get(url string, params map[string]string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// Close releases idle connections held by the underlying transport.
	Close()
}
