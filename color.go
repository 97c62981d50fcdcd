package osmfusion

type ColorClass uint16

const (
	COLOR_MATCH = ColorClass(iota + 1)
	COLOR_MISMATCH
	COLOR_NO_DATA
)

func (iotaIdx ColorClass) String() string {
	return [...]string{"match", "mismatch", "no-data"}[iotaIdx-1]
}

// Code returns name of the color used for visualization
func (iotaIdx ColorClass) Code() string {
	return [...]string{"WEBGreen", "WEBRed", "WEBBlueLight"}[iotaIdx-1]
}

// Hex returns RGB representation of the color
func (iotaIdx ColorClass) Hex() string {
	return [...]string{"#00a651", "#e32636", "#87cefa"}[iotaIdx-1]
}

// ColorAssignment is a color class of the lanelet after comparing its lanes with OSM
type ColorAssignment struct {
	Lanelet LaneletID
	Color   ColorClass
}
