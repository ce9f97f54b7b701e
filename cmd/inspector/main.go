package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/GoLaunchpad/launchgate/internal/model"
)

// inspector 命令行查询工具：查看余额、sale 进度和策略状态。

func main() {
	base := flag.String("server", "http://localhost:8080", "launchgate server base URL")
	caller := flag.String("caller", "", "caller identity (hex) sent as X-Caller-Id")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client := &inspectorClient{base: *base, caller: *caller}

	var err error
	switch args[0] {
	case "balance":
		if len(args) != 3 {
			usage()
			os.Exit(1)
		}
		err = client.balance(args[1], args[2])
	case "sale":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		err = client.sale(args[1])
	case "policy":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		err = client.get("/v1/policies/" + args[1])
	case "whitelist":
		if len(args) != 3 {
			usage()
			os.Exit(1)
		}
		err = client.get("/v1/policies/" + args[1] + "/whitelist/" + args[2])
	case "registry":
		err = client.get("/v1/registry")
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: inspector [flags] <command>

commands:
  registry                          show the global config
  balance <asset> <principal>       show a ledger balance
  sale <asset>                      show sale progress
  policy <asset>                    show the transfer policy
  whitelist <asset> <principal>     check whitelist membership`)
}

type inspectorClient struct {
	base   string
	caller string
}

func (c *inspectorClient) fetch(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	if c.caller != "" {
		req.Header.Set("X-Caller-Id", c.caller)
	}
	httpClient := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s: %s", resp.Status, string(body))
	}
	return body, nil
}

func (c *inspectorClient) get(path string) error {
	body, err := c.fetch(path)
	if err != nil {
		return err
	}
	return printJSON(body)
}

func (c *inspectorClient) balance(asset, principal string) error {
	body, err := c.fetch("/v1/ledger/" + asset + "/" + principal)
	if err != nil {
		return err
	}
	var resp model.BalanceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}
	fmt.Printf("asset:     %s\nprincipal: %s\nbalance:   %s (%d base units)\n",
		resp.Asset, resp.Principal, resp.Display, resp.Amount)
	return nil
}

func (c *inspectorClient) sale(asset string) error {
	body, err := c.fetch("/v1/sales/" + asset)
	if err != nil {
		return err
	}
	var resp model.SaleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return err
	}
	fmt.Printf("asset:       %s\nstatus:      %s\n", resp.Sale.Asset.String(), resp.Status)
	fmt.Printf("sold:        %s of %s hard cap\n",
		model.DisplayAmount(resp.Sale.TotalSold), model.DisplayAmount(resp.Sale.HardCap))
	fmt.Printf("soft cap:    %s (reached: %v)\n",
		model.DisplayAmount(resp.Sale.SoftCap), resp.SoftCapReached)
	fmt.Printf("vault stock: %s\n", model.DisplayAmount(resp.VaultBalance))
	fmt.Printf("window:      [%d, %d)\n", resp.Sale.StartTime, resp.Sale.EndTime)
	return nil
}

func printJSON(body []byte) error {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		fmt.Println(string(body))
		return nil
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
