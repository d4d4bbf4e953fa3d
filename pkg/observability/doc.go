/*
Package observability turns rcflow lifecycle hooks into Prometheus metrics
and structured log lines.
*/
package observability
