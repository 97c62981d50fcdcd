package osmfusion

type HighwayType uint16

const (
	HIGHWAY_MOTORWAY = HighwayType(iota + 1)
	HIGHWAY_MOTORWAY_LINK
	HIGHWAY_TRUNK
	HIGHWAY_TRUNK_LINK
	HIGHWAY_PRIMARY
	HIGHWAY_PRIMARY_LINK
	HIGHWAY_SECONDARY
	HIGHWAY_SECONDARY_LINK
	HIGHWAY_TERTIARY
	HIGHWAY_TERTIARY_LINK
	HIGHWAY_RESIDENTIAL
	HIGHWAY_LIVING_STREET
	HIGHWAY_SERVICE
	HIGHWAY_UNCLASSIFIED
	HIGHWAY_BUSWAY
	HIGHWAY_CYCLEWAY
)

func (iotaIdx HighwayType) String() string {
	return [...]string{"motorway", "motorway_link", "trunk", "trunk_link", "primary", "primary_link", "secondary", "secondary_link", "tertiary", "tertiary_link", "residential", "living_street", "service", "unclassified", "busway", "cycleway"}[iotaIdx-1]
}

// LaneletClass is a pair of lanelet2 'subtype' and 'location' values
type LaneletClass struct {
	Subtype  string `yaml:"subtype"`
	Location string `yaml:"location"`
}

var (
	laneletClassByHighway = map[HighwayType]LaneletClass{
		HIGHWAY_MOTORWAY:       {"highway", "nonurban"},
		HIGHWAY_MOTORWAY_LINK:  {"highway", "nonurban"},
		HIGHWAY_TRUNK:          {"highway", "nonurban"},
		HIGHWAY_TRUNK_LINK:     {"highway", "nonurban"},
		HIGHWAY_PRIMARY:        {"road", "urban"},
		HIGHWAY_PRIMARY_LINK:   {"road", "urban"},
		HIGHWAY_SECONDARY:      {"road", "urban"},
		HIGHWAY_SECONDARY_LINK: {"road", "urban"},
		HIGHWAY_TERTIARY:       {"road", "urban"},
		HIGHWAY_TERTIARY_LINK:  {"road", "urban"},
		HIGHWAY_RESIDENTIAL:    {"road", "urban"},
		HIGHWAY_SERVICE:        {"road", "urban"},
		HIGHWAY_UNCLASSIFIED:   {"road", "urban"},
		HIGHWAY_LIVING_STREET:  {"play_street", ""},
		HIGHWAY_BUSWAY:         {"bus_lane", "urban"},
		HIGHWAY_CYCLEWAY:       {"bicycle_lane", ""},
	}
)

// defaultLaneletClasses returns highway value -> lanelet class mapping
func defaultLaneletClasses() map[string]LaneletClass {
	classes := make(map[string]LaneletClass, len(laneletClassByHighway))
	for highway, class := range laneletClassByHighway {
		classes[highway.String()] = class
	}
	return classes
}
