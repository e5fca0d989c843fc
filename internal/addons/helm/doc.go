// Package helm applies install units (ChartInfo) with the Helm SDK.
//
// A ChartInfo describes one release: where the chart comes from, which
// values it is installed with, an optional CRD refresh and an optional hook
// run before the release. A Level groups units without ordering between
// them; the Deployer applies levels in order and the units of a level
// concurrently unless configured to run sequentially.
package helm
