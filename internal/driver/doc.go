// Package driver decodes NMEA 0183 sentences from a marine GNSS
// receiver into structured navigation reports.
//
// The driver validates each sentence's checksum before parsing it and
// routing it by type tag. Position-bearing sentences (GGA, RMC, GST) feed a
// stateful fusion engine that sizes position covariance from
// receiver-reported error estimates or configured defaults; all other
// supported sentence types translate one-to-one into auxiliary reports.
// Reports are handed to a sink, one Emit call per report.
package driver
