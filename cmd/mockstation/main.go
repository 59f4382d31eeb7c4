// Command mockstation answers like a MicroServer, for exercising the
// collector without hardware. It serves the canonical
// /tmp/latestsampledata_u.xml path with either a file's contents or a
// synthetic document whose readings drift a little between requests.
//
// Usage:
//
//	go run ./cmd/mockstation -addr :8089
//	go run ./cmd/mockstation -units metric
//	go run ./cmd/mockstation -file sample.xml -truncate
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"time"
)

var started = time.Now()

func main() {
	addr := flag.String("addr", ":8089", "listen address")
	file := flag.String("file", "", "serve this XML file instead of synthetic data")
	truncate := flag.Bool("truncate", false, "cut the closing tag to mimic a truncated transfer")
	units := flag.String("units", "us", "unit set for synthetic data: us or metric")
	flag.Parse()

	var source func() []byte
	switch {
	case *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("read %s: %v", *file, err)
		}
		source = func() []byte { return data }
	case *units == "us":
		source = func() []byte { return synthesize(usUnits) }
	case *units == "metric":
		source = func() []byte { return synthesize(metricUnits) }
	default:
		log.Fatalf("unknown -units %q (want us or metric)", *units)
	}

	http.HandleFunc("GET /tmp/latestsampledata_u.xml", func(w http.ResponseWriter, _ *http.Request) {
		body := source()
		if *truncate {
			body = truncateTail(body)
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Write(body) //nolint:errcheck // nothing to do about a dead client
	})

	log.Printf("mockstation listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil)) //nolint:gosec // local test tool
}

// unitSet names the unit designators and base readings for one station
// configuration. Real installations often mix systems, so the metric set
// keeps the barometer in inchesHg.
type unitSet struct {
	speed     string
	temp      string
	rain      string
	rainRate  string
	pressure  string
	windBase  float64
	tempBase  float64
	pressBase float64
	rainBase  float64
}

var usUnits = unitSet{
	speed: "mph", temp: "degreeF", rain: "inchesRain", rainRate: "inchesPerHour", pressure: "inchesHg",
	windBase: 8.4, tempBase: 71.3, pressBase: 29.92, rainBase: 1.42,
}

var metricUnits = unitSet{
	speed: "kmPerHour", temp: "degreeC", rain: "mmRain", rainRate: "mmPerHour", pressure: "inchesHg",
	windBase: 13.5, tempBase: 21.8, pressBase: 29.92, rainBase: 36.1,
}

// synthesize builds one Enhanced XML document around the base readings, with
// the rain counter ticking up every few minutes of mockstation uptime.
func synthesize(u unitSet) []byte {
	now := time.Now().UTC()
	wind := jitter(u.windBase, 2.0)
	gust := wind + jitter(3.0, 1.5)
	temp := jitter(u.tempBase, 0.4)
	rainTotal := u.rainBase + 0.01*math.Floor(time.Since(started).Minutes()/3)

	var b strings.Builder
	b.WriteString("<oriondata station=\"mockstation\">\n")
	fmt.Fprintf(&b, "<meas name=\"mtSampTime\">%s</meas>\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "<meas name=\"mtTemp1\" unit=\"%s\">%.1f</meas>\n", u.temp, temp)
	fmt.Fprintf(&b, "<meas name=\"mtRelHumidity\" unit=\"percent\">%.1f</meas>\n", jitter(48.7, 3.0))
	fmt.Fprintf(&b, "<meas name=\"mtDewPoint\" unit=\"%s\">%.1f</meas>\n", u.temp, temp-20.5)
	fmt.Fprintf(&b, "<meas name=\"mtWindSpeed\" unit=\"%s\">%.1f</meas>\n", u.speed, wind)
	fmt.Fprintf(&b, "<meas name=\"mtAdjWindDir\" unit=\"degrees\">%.0f</meas>\n", jitter(278, 15))
	fmt.Fprintf(&b, "<meas name=\"mt2MinWindGustSpeed\" unit=\"%s\">%.1f</meas>\n", u.speed, gust)
	fmt.Fprintf(&b, "<meas name=\"mt2MinWindGustDir\" unit=\"degrees\">%.0f</meas>\n", jitter(285, 15))
	fmt.Fprintf(&b, "<meas name=\"mtAdjBaromPress\" unit=\"%s\">%.2f</meas>\n", u.pressure, jitter(u.pressBase, 0.02))
	fmt.Fprintf(&b, "<meas name=\"mtRainRate\" unit=\"%s\">0.00</meas>\n", u.rainRate)
	fmt.Fprintf(&b, "<meas name=\"mtRainThisMonth\" unit=\"%s\">%.2f</meas>\n", u.rain, rainTotal)
	fmt.Fprintf(&b, "<meas name=\"mtWindChill\" unit=\"%s\">%.1f</meas>\n", u.temp, temp)
	fmt.Fprintf(&b, "<meas name=\"mtHeatIndex\" unit=\"%s\">%.1f</meas>\n", u.temp, temp-0.4)
	fmt.Fprintf(&b, "<meas name=\"mtTemp_2\" unit=\"%s\">%.1f</meas>\n", u.temp, temp-3.1)
	fmt.Fprintf(&b, "<meas name=\"mtTemp_3\" unit=\"%s\">%.1f</meas>\n", u.temp, temp-5.3)
	fmt.Fprintf(&b, "<meas name=\"mtTemp_4\" unit=\"%s\">%.1f</meas>\n", u.temp, temp-5.9)
	fmt.Fprintf(&b, "<meas name=\"mtSolarRadiaton\" unit=\"wattsPerMeterSquared\">%.1f</meas>\n", jitter(612.1, 40))
	b.WriteString("</oriondata>\n")
	return []byte(b.String())
}

func jitter(base, spread float64) float64 {
	return base + (rand.Float64()*2-1)*spread
}

// truncateTail reproduces the device's transfer bug: the closing tag is cut
// short and followed by null padding.
func truncateTail(body []byte) []byte {
	i := bytes.LastIndex(body, []byte("</oriondata>"))
	if i < 0 {
		return body
	}
	out := append([]byte{}, body[:i]...)
	return append(out, "</orio\x00\x00"...)
}
