package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"FinBoard/internal/convert"
	"FinBoard/internal/indicator"
	"FinBoard/internal/model"
	"FinBoard/internal/store"

	"github.com/gin-gonic/gin"
)

// fptr maps NaN to a nil pointer so undefined values serialize as JSON
// null instead of breaking the encoder.
func fptr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, convert.ErrEmptyFxSeries):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseRange(c *gin.Context) (start, end time.Time, err error) {
	if v := c.Query("start"); v != "" {
		if start, err = time.Parse(model.DateFormat, v); err != nil {
			return start, end, errors.New("start must be YYYY-MM-DD")
		}
	}
	if v := c.Query("end"); v != "" {
		if end, err = time.Parse(model.DateFormat, v); err != nil {
			return start, end, errors.New("end must be YYYY-MM-DD")
		}
	}
	return start, end, nil
}

func (s *Server) listInstruments(c *gin.Context) {
	class := model.Classification(c.Query("classification"))
	if class != "" && !class.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown classification"})
		return
	}
	instruments, err := s.store.ListInstruments(class)
	if err != nil {
		s.fail(c, err)
		return
	}
	if instruments == nil {
		instruments = []model.Instrument{}
	}
	c.JSON(http.StatusOK, instruments)
}

type priceRow struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func (s *Server) readSeries(c *gin.Context) (model.Instrument, []model.PricePoint, bool) {
	start, end, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return model.Instrument{}, nil, false
	}
	inst, err := s.store.GetInstrument(c.Param("symbol"))
	if err != nil {
		s.fail(c, err)
		return model.Instrument{}, nil, false
	}
	points, err := s.store.ReadPrices(inst.ID, start, end)
	if err != nil {
		s.fail(c, err)
		return model.Instrument{}, nil, false
	}
	return inst, points, true
}

func (s *Server) getPrices(c *gin.Context) {
	_, points, ok := s.readSeries(c)
	if !ok {
		return
	}
	rows := make([]priceRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, priceRow{
			Date: p.Date.Format(model.DateFormat),
			Open: p.Open, High: p.High, Low: p.Low, Close: p.Close, Volume: p.Volume,
		})
	}
	c.JSON(http.StatusOK, rows)
}

type indicatorRow struct {
	Date       string   `json:"date"`
	Close      float64  `json:"close"`
	MA         *float64 `json:"ma"`
	RSI        *float64 `json:"rsi"`
	MACD       *float64 `json:"macd"`
	MACDSignal *float64 `json:"macd_signal"`
	MACDHist   *float64 `json:"macd_hist"`
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return n, nil
}

func (s *Server) getIndicators(c *gin.Context) {
	maWindow, err := intQuery(c, "ma", 20)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rsiLength, err := intQuery(c, "rsi", 14)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	macdBase, err := intQuery(c, "macd", 12)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, points, ok := s.readSeries(c)
	if !ok {
		return
	}

	closes := model.Closes(points)
	ma, err := indicator.SMA(closes, maWindow)
	if err != nil {
		s.fail(c, err)
		return
	}
	rsi, err := indicator.RSI(closes, rsiLength)
	if err != nil {
		s.fail(c, err)
		return
	}
	macd, signal, hist, err := indicator.MACD(closes, macdBase)
	if err != nil {
		s.fail(c, err)
		return
	}

	rows := make([]indicatorRow, 0, len(points))
	for i, p := range points {
		rows = append(rows, indicatorRow{
			Date:       p.Date.Format(model.DateFormat),
			Close:      p.Close,
			MA:         fptr(ma[i]),
			RSI:        fptr(rsi[i]),
			MACD:       fptr(macd[i]),
			MACDSignal: fptr(signal[i]),
			MACDHist:   fptr(hist[i]),
		})
	}
	c.JSON(http.StatusOK, rows)
}

type statsResponse struct {
	Symbol               string   `json:"symbol"`
	Observations         int      `json:"observations"`
	CumulativeReturn     *float64 `json:"cumulative_return"`
	AnnualizedReturn     *float64 `json:"annualized_return"`
	AnnualizedVolatility *float64 `json:"annualized_volatility"`
	MaxDrawdown          *float64 `json:"max_drawdown"`
}

func statsOf(symbol string, points []model.PricePoint) statsResponse {
	spanDays := 0
	if len(points) >= 2 {
		spanDays = int(points[len(points)-1].Date.Sub(points[0].Date).Hours() / 24)
	}
	st := indicator.ComputeStats(model.Closes(points), spanDays)
	return statsResponse{
		Symbol:               symbol,
		Observations:         len(points),
		CumulativeReturn:     fptr(st.CumulativeReturn),
		AnnualizedReturn:     fptr(st.AnnualizedReturn),
		AnnualizedVolatility: fptr(st.AnnualizedVolatility),
		MaxDrawdown:          fptr(st.MaxDrawdown),
	}
}

func (s *Server) getStats(c *gin.Context) {
	inst, points, ok := s.readSeries(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, statsOf(inst.Symbol, points))
}

type convertedRow struct {
	Date      string   `json:"date"`
	Original  float64  `json:"original"`
	Rate      *float64 `json:"rate"`
	Converted *float64 `json:"converted"`
}

func (s *Server) getConverted(c *gin.Context) {
	fxSymbol := c.Query("fx")
	currency := c.Query("currency")
	if fxSymbol == "" || currency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fx and currency are required"})
		return
	}
	dir := convert.Multiply
	if v := c.Query("direction"); v != "" {
		var err error
		if dir, err = convert.ParseDirection(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	_, points, ok := s.readSeries(c)
	if !ok {
		return
	}

	start, end, _ := parseRange(c)
	fxInst, err := s.store.GetInstrument(fxSymbol)
	if err != nil {
		s.fail(c, err)
		return
	}
	fxPoints, err := s.store.ReadPrices(fxInst.ID, start, end)
	if err != nil {
		s.fail(c, err)
		return
	}

	conv, err := convert.Convert(model.CloseSeries(points), model.CloseSeries(fxPoints), dir)
	if err != nil {
		s.fail(c, err)
		return
	}

	rows := make([]convertedRow, 0, len(conv))
	for _, cv := range conv {
		rows = append(rows, convertedRow{
			Date:      cv.Date.Format(model.DateFormat),
			Original:  cv.Original,
			Rate:      fptr(cv.Rate),
			Converted: fptr(cv.Value),
		})
	}
	c.JSON(http.StatusOK, gin.H{"currency": currency, "rows": rows})
}

type seriesPointRow struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// compare evaluates one metric across several instruments over a shared
// window. Scalar metrics come back as one value per symbol, series
// metrics as one series per symbol.
func (s *Server) compare(c *gin.Context) {
	symbols := strings.Split(c.Query("symbols"), ",")
	if len(symbols) == 0 || symbols[0] == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols is required"})
		return
	}
	metric := c.DefaultQuery("metric", "close")

	start, end, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scalars := make(map[string]*float64)
	series := make(map[string][]seriesPointRow)

	for _, symbol := range symbols {
		symbol = strings.TrimSpace(symbol)
		inst, err := s.store.GetInstrument(symbol)
		if err != nil {
			s.fail(c, err)
			return
		}
		points, err := s.store.ReadPrices(inst.ID, start, end)
		if err != nil {
			s.fail(c, err)
			return
		}

		closes := model.Closes(points)
		var values []float64
		switch metric {
		case "close":
			values = closes
		case "ma":
			window, err := intQuery(c, "window", 20)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			values, _ = indicator.SMA(closes, window)
		case "rsi":
			length, err := intQuery(c, "length", 14)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			values, _ = indicator.RSI(closes, length)
		case "macd":
			base, err := intQuery(c, "base", 12)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			values, _, _, _ = indicator.MACD(closes, base)
		case "cumulative_return", "annualized_return", "annualized_volatility", "max_drawdown":
			st := statsOf(symbol, points)
			switch metric {
			case "cumulative_return":
				scalars[symbol] = st.CumulativeReturn
			case "annualized_return":
				scalars[symbol] = st.AnnualizedReturn
			case "annualized_volatility":
				scalars[symbol] = st.AnnualizedVolatility
			case "max_drawdown":
				scalars[symbol] = st.MaxDrawdown
			}
			continue
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown metric " + metric})
			return
		}

		rows := make([]seriesPointRow, 0, len(points))
		for i, p := range points {
			rows = append(rows, seriesPointRow{
				Date:  p.Date.Format(model.DateFormat),
				Value: fptr(values[i]),
			})
		}
		series[symbol] = rows
	}

	if len(scalars) > 0 {
		c.JSON(http.StatusOK, gin.H{"metric": metric, "values": scalars})
		return
	}
	c.JSON(http.StatusOK, gin.H{"metric": metric, "series": series})
}
