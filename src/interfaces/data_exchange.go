package interfaces

import "github.com/qymmdj/daily-stock-analysis/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing data with external
// listeners (REST/WebSocket server).
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// -----------------------------------------------------------------------------

	// Broadcast pushes an update to all connected listeners. Callers that
	// want new clients to see it too pair this with SetLatest.
	Broadcast(payload *models.MLatestData)

	// -----------------------------------------------------------------------------

	// SetLatest updates the internal state without broadcasting.
	SetLatest(payload *models.MLatestData)

	// -----------------------------------------------------------------------------

	// Start the server
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}
