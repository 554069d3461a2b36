package xuangubao

import (
	"encoding/json"

	"github.com/qymmdj/daily-stock-analysis/src/helpers"
)

// -----------------------------------------------------------------------------
// Wire format shared by the trend and kline endpoints:
// {code, message, data:{fields:[...], candle:{<symbol>:{lines:[[...]], pre_close_px, total}}}}
// Each line is a numeric tuple ordered per data.fields; the ordering is not
// guaranteed to be stable across endpoint variants, so rows must always be
// read through the fields index, never by fixed position.
// -----------------------------------------------------------------------------

const successCode = 20000

type candleEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Fields []string               `json:"fields"`
		Candle map[string]candleBlock `json:"candle"`
	} `json:"data"`
}

type candleBlock struct {
	// Pointers handle null entries inside a row
	Lines      [][]*float64 `json:"lines"`
	PreClosePx float64      `json:"pre_close_px"`
	Total      int          `json:"total"`
}

// -----------------------------------------------------------------------------

// parseCandleEnvelope validates the envelope and pulls out the candle block
// for one symbol together with the positional field index.
func parseCandleEnvelope(body []byte, symbol string) (*candleBlock, map[string]int, error) {
	var resp candleEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, helpers.NewParseError("json unmarshal failed", err)
	}

	if resp.Code != successCode {
		return nil, nil, helpers.NewAPIError(resp.Code, resp.Message)
	}

	block, ok := resp.Data.Candle[symbol]
	if !ok {
		return nil, nil, helpers.NewNotFoundError(symbol)
	}

	if len(block.Lines) == 0 || len(resp.Data.Fields) == 0 {
		return nil, nil, helpers.NewParseError("empty candle data for "+symbol, nil)
	}

	fieldIndex := make(map[string]int, len(resp.Data.Fields))
	for i, field := range resp.Data.Fields {
		fieldIndex[field] = i
	}

	return &block, fieldIndex, nil
}

// -----------------------------------------------------------------------------

// lineValue reads one named field out of a positional row. The second return
// is false when the field is not mapped, out of range or null.
func lineValue(line []*float64, fieldIndex map[string]int, field string) (float64, bool) {
	idx, ok := fieldIndex[field]
	if !ok || idx >= len(line) || line[idx] == nil {
		return 0, false
	}
	return *line[idx], true
}
