package types

import "kisanmitra/internal/schema"

// Weather forecast ---------------------------------------------------------------

type GetWeatherForecastInput struct {
	Location string `json:"location"`
	Language string `json:"language"`
}

type CurrentWeather struct {
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
	Humidity  float64 `json:"humidity"`
	WindSpeed float64 `json:"windSpeed"`
}

type DailyForecast struct {
	Day       string  `json:"day"`
	Date      string  `json:"date"`
	HighTemp  float64 `json:"highTemp"`
	LowTemp   float64 `json:"lowTemp"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
	Humidity  float64 `json:"humidity"`
	WindSpeed float64 `json:"windSpeed"`
}

type GetWeatherForecastOutput struct {
	Current  CurrentWeather  `json:"current"`
	Forecast []DailyForecast `json:"forecast"`
	Summary  string          `json:"summary"`
}

var WeatherIcons = []string{"Sunny", "Cloudy", "Rainy", "Windy", "Snowy", "Thunderstorm", "PartlyCloudy"}

var GetWeatherForecastInputSchema = schema.Obj("Location to forecast.",
	schema.Field("location", schema.Str("The city or region.").MinLen(2).Msg("Please enter a location.")),
	schema.Field("language", language()),
)

var GetWeatherForecastOutputSchema = schema.Obj("Current conditions and a 5-day forecast.",
	schema.Field("current", schema.Obj("Current conditions.",
		schema.Field("temp", schema.Num("Temperature in Celsius.").Coerced()),
		schema.Field("condition", text("Short description of the current weather.")),
		schema.Field("humidity", schema.Num("Humidity percentage.").Coerced()),
		schema.Field("windSpeed", schema.Num("Wind speed in km/h.").Coerced()),
	)),
	schema.Field("forecast", schema.Arr("Day-by-day forecast for the next 5 days.", schema.Obj("One day.",
		schema.Field("day", text("Day of the week.")),
		schema.Field("date", schema.Str("Date in YYYY-MM-DD format.").As(schema.FormatDate)),
		schema.Field("highTemp", schema.Num("High temperature in Celsius.").Coerced()),
		schema.Field("lowTemp", schema.Num("Low temperature in Celsius.").Coerced()),
		schema.Field("condition", text("Short description of the weather.")),
		schema.Field("icon", schema.Enum("Icon name for the condition.", WeatherIcons...)),
		schema.Field("humidity", schema.Num("Average humidity percentage.").Coerced()),
		schema.Field("windSpeed", schema.Num("Average wind speed in km/h.").Coerced()),
	))),
	schema.Field("summary", text("A short farmer-focused summary of the week.")),
)

func ValidateGetWeatherForecastInput(raw []byte) (GetWeatherForecastInput, error) {
	return decode[GetWeatherForecastInput](GetWeatherForecastInputSchema, raw)
}
