// Command race_probe hammers a running instance with identical concurrent
// enrollment submissions and verifies the admission guarantee end to end:
// exactly one 201, everything else 409. Exits non-zero on any violation.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"
)

type submission struct {
	Nombre              string `json:"nombre"`
	Apellido            string `json:"apellido"`
	Sexo                string `json:"sexo"`
	DNI                 string `json:"dni"`
	Mail                string `json:"mail"`
	DepartamentoInteres string `json:"departamento_interes"`
	CarreraInteres      string `json:"carrera_interes"`
	InstitucionSlug     string `json:"institucion_slug"`
}

type outcome struct {
	status   int
	duration time.Duration
	err      error
}

func main() {
	var (
		base        string
		dni         string
		carrera     string
		institucion string
		concurrency int
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&dni, "dni", fmt.Sprintf("99%d", time.Now().Unix()%1000000), "DNI to submit")
	flag.StringVar(&carrera, "carrera", "ingenieria-en-sistemas", "Carrera of interest")
	flag.StringVar(&institucion, "institucion", "uade", "Institution slug")
	flag.IntVar(&concurrency, "n", 50, "Concurrent submissions")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	payload, err := json.Marshal(submission{
		Nombre:              "Probe",
		Apellido:            "Runner",
		Sexo:                "femenino",
		DNI:                 dni,
		Mail:                fmt.Sprintf("probe-%s@example.com", dni),
		DepartamentoInteres: "ingenieria",
		CarreraInteres:      carrera,
		InstitucionSlug:     institucion,
	})
	if err != nil {
		log.Fatalf("failed to encode payload: %v", err)
	}

	url := base + "/api/v1/enrollment/submit"
	client := &http.Client{Timeout: timeout}

	outcomes := make([]outcome, concurrency)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			began := time.Now()
			resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
			if err != nil {
				outcomes[idx] = outcome{err: err}
				return
			}
			io.Copy(io.Discard, resp.Body) //nolint:errcheck
			resp.Body.Close()
			outcomes[idx] = outcome{status: resp.StatusCode, duration: time.Since(began)}
		}(i)
	}
	close(start)
	wg.Wait()

	var created, conflicts, failures int
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			failures++
			fmt.Printf("[ERROR] %v\n", o.err)
		case o.status == http.StatusCreated:
			created++
		case o.status == http.StatusConflict:
			conflicts++
		default:
			failures++
			fmt.Printf("[UNEXPECTED] status %d\n", o.status)
		}
	}

	fmt.Printf("submissions=%d created=%d conflicts=%d failures=%d (dni=%s carrera=%s institucion=%s)\n",
		concurrency, created, conflicts, failures, dni, carrera, institucion)

	if created != 1 || failures > 0 {
		fmt.Println("admission guarantee VIOLATED")
		os.Exit(1)
	}
	fmt.Println("admission guarantee held")
}
