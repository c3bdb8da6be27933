package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_results_run ON results (run_id, satellite, band, pass_start);
CREATE INDEX IF NOT EXISTS idx_rejections_result ON rejections (result_id);`

	insertRunSQL = `
INSERT INTO runs (id,
                  start_time,
                  station,
                  config)
VALUES (?, ?, ?, ?)`

	selectRunSQL = `
SELECT 
    id, 
    start_time, 
    station, 
    config 
FROM runs 
WHERE 
    id = ?`

	selectRunsSQL = `
SELECT 
    id, 
    start_time, 
    station, 
    config 
FROM runs
ORDER BY start_time, rowid`

	insertResultSQL = `
INSERT INTO results (run_id,
                     satellite,
                     band,
                     sector,
                     pass,
                     pass_start,
                     outcome,
                     rh,
                     amplitude,
                     min_elevation,
                     max_elevation,
                     rise_set,
                     mean_azimuth,
                     mean_time,
                     duration,
                     num_points,
                     peak_to_noise,
                     noise,
                     factor1,
                     factor2,
                     error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertRejectionSQL = `
INSERT INTO rejections (result_id,
                        reason,
                        observed,
                        threshold)
VALUES (?, ?, ?, ?)`

	insertPeriodogramSQL = `
    INSERT INTO periodograms (
        result_id,
        idx,
        rh,
        amplitude
    )
    VALUES `

	selectResultsSQL = `
SELECT 
    id,
    satellite,
    band,
    sector,
    pass,
    pass_start,
    outcome,
    rh,
    amplitude,
    min_elevation,
    max_elevation,
    rise_set,
    mean_azimuth,
    mean_time,
    duration,
    num_points,
    peak_to_noise,
    noise,
    factor1,
    factor2,
    error
FROM results
WHERE 
    run_id = ?
    AND (? IS NULL OR outcome = ?)
    AND (? IS NULL OR band = ?)
    AND (? IS NULL OR satellite = ?)
ORDER BY satellite, band, pass_start, sector`

	selectRejectionsSQL = `
SELECT 
    reason, 
    observed, 
    threshold 
FROM rejections 
WHERE 
    result_id = ?
ORDER BY rowid`

	selectPeriodogramSQL = `
SELECT 
    rh, 
    amplitude 
FROM periodograms 
WHERE 
    result_id = ?
ORDER BY idx`
)
