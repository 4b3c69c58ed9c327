package api

// StatusBlock mirrors the Redfish resource status object
type StatusBlock struct {
	State  string `json:"State"`
	Health string `json:"Health"`
}

// ServiceLinks holds the navigation links exposed by the service root
type ServiceLinks struct {
	Servers string `json:"Servers"`
	Health  string `json:"Health"`
}

// ServiceRootResponse describes the emulated management service
type ServiceRootResponse struct {
	Name        string       `json:"Name"`
	Product     string       `json:"Product"`
	Version     string       `json:"Version"`
	UUID        string       `json:"UUID"`
	ServerCount int          `json:"ServerCount"`
	Links       ServiceLinks `json:"Links"`
}

// ServerLinks holds the per-server resource links
type ServerLinks struct {
	Thermal string `json:"Thermal"`
	Power   string `json:"Power"`
}

// ServerSummary is one member of the server collection
type ServerSummary struct {
	ID         string      `json:"Id"`
	UUID       string      `json:"UUID"`
	Model      string      `json:"Model"`
	ServiceTag string      `json:"ServiceTag"`
	Links      ServerLinks `json:"Links"`
}

// ServerCollectionResponse lists every registered server
type ServerCollectionResponse struct {
	Count   int             `json:"Count"`
	Members []ServerSummary `json:"Members"`
}

// TemperatureReading is one temperature sensor inside the thermal resource
type TemperatureReading struct {
	Name                      string      `json:"Name"`
	ReadingCelsius            float64     `json:"ReadingCelsius"`
	UpperThresholdNonCritical float64     `json:"UpperThresholdNonCritical"`
	UpperThresholdCritical    float64     `json:"UpperThresholdCritical"`
	UpperThresholdFatal       float64     `json:"UpperThresholdFatal"`
	Status                    StatusBlock `json:"Status"`
}

// FanReading is one fan inside the thermal resource
type FanReading struct {
	Name                      string      `json:"Name"`
	ReadingRPM                int         `json:"ReadingRPM"`
	LowerThresholdNonCritical int         `json:"LowerThresholdNonCritical"`
	LowerThresholdCritical    int         `json:"LowerThresholdCritical"`
	Status                    StatusBlock `json:"Status"`
}

// ThermalResponse is the thermal resource of one server
type ThermalResponse struct {
	ID           string               `json:"Id"`
	Name         string               `json:"Name"`
	Temperatures []TemperatureReading `json:"Temperatures"`
	Fans         []FanReading         `json:"Fans"`
}

// PowerMetrics summarizes the sampling interval of the consumption sensor
type PowerMetrics struct {
	MinConsumedWatts     float64 `json:"MinConsumedWatts"`
	MaxConsumedWatts     float64 `json:"MaxConsumedWatts"`
	AverageConsumedWatts float64 `json:"AverageConsumedWatts"`
}

// PowerControl is the consumption block of the power resource
type PowerControl struct {
	Name                string       `json:"Name"`
	PowerConsumedWatts  float64      `json:"PowerConsumedWatts"`
	PowerRequestedWatts float64      `json:"PowerRequestedWatts"`
	PowerCapacityWatts  float64      `json:"PowerCapacityWatts"`
	PowerMetrics        PowerMetrics `json:"PowerMetrics"`
}

// PowerSupply is one PSU inside the power resource
type PowerSupply struct {
	Name                 string      `json:"Name"`
	PowerCapacityWatts   float64     `json:"PowerCapacityWatts"`
	LastPowerOutputWatts float64     `json:"LastPowerOutputWatts"`
	Status               StatusBlock `json:"Status"`
}

// PowerResponse is the power resource of one server
type PowerResponse struct {
	ID            string         `json:"Id"`
	Name          string         `json:"Name"`
	PowerControl  []PowerControl `json:"PowerControl"`
	PowerSupplies []PowerSupply  `json:"PowerSupplies"`
}

// MetricDefinitionEntry describes one declared metric kind
type MetricDefinitionEntry struct {
	ID              string  `json:"Id"`
	Name            string  `json:"Name"`
	MetricType      string  `json:"MetricType"`
	Units           string  `json:"Units"`
	MinReadingRange float64 `json:"MinReadingRange"`
	MaxReadingRange float64 `json:"MaxReadingRange"`
	Precision       int     `json:"Precision"`
}

// MetricDefinitionsResponse lists the declared metric kinds
type MetricDefinitionsResponse struct {
	Count   int                     `json:"Count"`
	Members []MetricDefinitionEntry `json:"Members"`
}
