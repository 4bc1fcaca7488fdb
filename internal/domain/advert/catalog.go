package advert

// states, cities and localities form the static targeting catalog
var states = []string{
	"Delhi",
	"Mumbai",
	"Bangalore",
	"Chennai",
	"Kolkata",
	"Hyderabad",
	"Pune",
	"Ahmedabad",
}

var cities = map[string][]string{
	"Delhi":     {"New Delhi", "Central Delhi", "East Delhi", "West Delhi", "North Delhi", "South Delhi"},
	"Mumbai":    {"Mumbai", "Thane", "Navi Mumbai", "Kalyan", "Vasai-Virar"},
	"Bangalore": {"Bangalore", "Electronic City", "Whitefield", "Marathahalli", "Koramangala"},
	"Chennai":   {"Chennai", "Tambaram", "Anna Nagar", "T. Nagar", "Adyar"},
	"Kolkata":   {"Kolkata", "Salt Lake", "Howrah", "Dum Dum", "Park Street"},
	"Hyderabad": {"Hyderabad", "Secunderabad", "Cyberabad", "Gachibowli", "HITEC City"},
	"Pune":      {"Pune", "Pimpri-Chinchwad", "Hinjewadi", "Baner", "Koregaon Park"},
	"Ahmedabad": {"Ahmedabad", "Gandhinagar", "Vastrapur", "Bodakdev", "Satellite"},
}

var localities = map[string][]string{
	"New Delhi": {"Connaught Place", "Karol Bagh", "Lajpat Nagar", "Defence Colony", "Greater Kailash"},
	"Mumbai":    {"Bandra", "Andheri", "Powai", "Malad", "Goregaon"},
	"Bangalore": {"Koramangala", "Indiranagar", "Jayanagar", "Malleshwaram", "Rajajinagar"},
	"Chennai":   {"T. Nagar", "Anna Nagar", "Adyar", "Velachery", "Tambaram"},
	"Kolkata":   {"Park Street", "Salt Lake", "Dum Dum", "Howrah", "Ballygunge"},
	"Hyderabad": {"Gachibowli", "HITEC City", "Banjara Hills", "Jubilee Hills", "Secunderabad"},
	"Pune":      {"Koregaon Park", "Baner", "Hinjewadi", "Viman Nagar", "Kalyani Nagar"},
	"Ahmedabad": {"Vastrapur", "Bodakdev", "Satellite", "Maninagar", "Naranpura"},
}

// States returns the targetable states
func States() []string {
	return append([]string(nil), states...)
}

// Cities returns the cities of state, empty for unknown states
func Cities(state string) []string {
	return append([]string{}, cities[state]...)
}

// Localities returns the localities of city, empty for unknown cities
func Localities(city string) []string {
	return append([]string{}, localities[city]...)
}
