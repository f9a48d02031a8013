package config

// EngineConfig contains resolver and reconstructor tuning.
type EngineConfig struct {
	CityCenterLat    float64 `yaml:"cityCenterLat" validate:"gte=-90,lte=90"`
	CityCenterLon    float64 `yaml:"cityCenterLon" validate:"gte=-180,lte=180"`
	PartialThreshold float64 `yaml:"partialThreshold" validate:"gte=0,lte=1"`
	CellToleranceDeg float64 `yaml:"cellToleranceDeg" validate:"gte=0"`
	Workers          int     `yaml:"workers" validate:"gte=0"`
}

// PathsConfig contains the data file locations.
type PathsConfig struct {
	Stops      string `yaml:"stops"`
	History    string `yaml:"history"`
	Artifact   string `yaml:"artifact"`
	Database   string `yaml:"database"`
	IndexCache string `yaml:"indexCache"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Engine EngineConfig `yaml:"engine"`
	Paths  PathsConfig  `yaml:"paths"`
}
