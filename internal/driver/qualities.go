package driver

import "github.com/casnav14-vsnt/nmea-navsat-driver/internal/report"

// quality maps one GGA fix quality code to a default estimated
// position error and the status/covariance classification of the
// resulting fix.
type quality struct {
	defaultEPE float64
	status     report.FixStatus
	covariance report.CovarianceType
}

type qualityTable map[int]quality

func newQualityTable(cfg Config) qualityTable {
	return qualityTable{
		-1: {cfg.EPEQuality0, report.StatusNoFix, report.CovarianceUnknown},     // unknown
		0:  {cfg.EPEQuality0, report.StatusNoFix, report.CovarianceUnknown},     // no fix
		1:  {cfg.EPEQuality1, report.StatusFix, report.CovarianceApproximated},  // autonomous
		2:  {cfg.EPEQuality2, report.StatusSBASFix, report.CovarianceApproximated}, // differential
		4:  {cfg.EPEQuality4, report.StatusGBASFix, report.CovarianceApproximated}, // RTK fixed
		5:  {cfg.EPEQuality5, report.StatusGBASFix, report.CovarianceApproximated}, // RTK float
		9:  {cfg.EPEQuality9, report.StatusGBASFix, report.CovarianceApproximated}, // SBAS
	}
}

// lookup returns the entry for code and the code it resolved to.
// Codes the table does not list collapse to the unknown entry, and
// callers must treat them as unknown too.
func (t qualityTable) lookup(code int) (quality, int) {
	if q, ok := t[code]; ok {
		return q, code
	}
	return t[-1], -1
}
