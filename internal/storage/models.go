package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
)

// Run is a single execution of the retrieval over one SNR file.
type Run struct {
	ID        uuid.UUID `json:"id"`                      // Unique identifier of the run
	StartTime time.Time `json:"startTime"`               // When the run began
	Station   string    `json:"station"`                 // Station or file the observations came from
	Config    *string   `json:"config,string,omitempty"` // Optional retrieval configuration in JSON format
}

// Record is a stored retrieval result.
type Record struct {
	ID int64
	retrieval.Result
}

type resultData struct {
	ID           int64
	Satellite    int
	Band         int
	Sector       int
	Pass         int
	PassStart    float64
	Outcome      string
	RH           sql.NullFloat64
	Amplitude    sql.NullFloat64
	MinElevation sql.NullFloat64
	MaxElevation sql.NullFloat64
	RiseSet      sql.NullInt64
	MeanAzimuth  sql.NullFloat64
	MeanTime     sql.NullFloat64
	Duration     sql.NullFloat64
	NumPoints    sql.NullInt64
	PeakToNoise  sql.NullFloat64
	Noise        sql.NullFloat64
	Factor1      sql.NullFloat64
	Factor2      sql.NullFloat64
	Error        sql.NullString
}
