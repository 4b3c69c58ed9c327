package common

import "time"

// Dimension is a name-value pair qualifying a metric point
type Dimension struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// MetricPoint is a single flattened sensor reading, ready for ingestion
type MetricPoint struct {
	MetricName string      `json:"MetricName"`
	Value      float64     `json:"Value"`
	Unit       string      `json:"Unit"`
	Timestamp  time.Time   `json:"Timestamp"`
	Dimensions []Dimension `json:"Dimensions"`
}

// IngestPayload is the payload to be sent to the metrics ingestion endpoint
type IngestPayload struct {
	Namespace  string        `json:"Namespace"`
	MetricData []MetricPoint `json:"MetricData"`
}
