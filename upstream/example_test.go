package upstream_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jonwraymond/ensemblops/enrich"
	"github.com/jonwraymond/ensemblops/upstream"
)

func ExampleClient_Request() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/info/data":
			fmt.Fprint(w, `{"releases":[113]}`)
		case "/lookup/id/ENSG00000139618":
			fmt.Fprint(w, `{"display_name":"BRCA2"}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"Could not find species"}`)
		}
	}))
	defer srv.Close()

	client, err := upstream.New(upstream.Config{
		BaseURL:     srv.URL,
		Server:      "grch38",
		MinInterval: time.Millisecond,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	ctx := context.Background()

	body, _ := client.Request(ctx, "/lookup/id/ENSG00000139618", nil)
	fmt.Println(string(body))
	fmt.Println(client.Release(ctx))

	_, err = client.Request(ctx, "/lookup/symbol/homo_sapien/BRCA2", nil)
	var ee *enrich.EnrichedError
	if errors.As(err, &ee) {
		fmt.Println(ee.StatusCode, ee.Example)
	}
	// Output:
	// {"display_name":"BRCA2"}
	// 113
	// 400 /lookup/symbol/homo_sapiens/BRCA2
}
