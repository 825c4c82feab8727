package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "item":
		handleItem(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: itemvault auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleItem(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: itemvault item <list|create|get|update|delete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listItems(args[1:])
	case "create":
		createItem(args[1:])
	case "get":
		getItem(args[1:])
	case "update":
		updateItem(args[1:])
	case "delete":
		deleteItem(args[1:])
	default:
		fmt.Printf("unknown item command: %s\n", subCmd)
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *username == "" || *password == "" {
		fmt.Println("Error: username, email, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"username": *username,
		"email":    *email,
		"password": *password,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ User registered: %s\n", *username)
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	identifier := fs.String("identifier", "", "username or email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *identifier == "" || *password == "" {
		fmt.Println("Error: identifier and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"identifier": *identifier, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %v\n", result["username"])
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

// Item commands
func listItems(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/items", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}

	var items []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&items)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQUANTITY\tCREATED")
	for _, item := range items {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n",
			item["id"], item["name"], item["price"], item["quantity"], item["created_at"])
	}
	w.Flush()
}

func createItem(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "item name")
	description := fs.String("description", "", "item description")
	price := fs.String("price", "", "item price")
	quantity := fs.String("quantity", "", "item quantity")

	fs.Parse(args)

	if *name == "" {
		fmt.Println("Error: name is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"name": *name}
	if *description != "" {
		payload["description"] = *description
	}
	if *price != "" {
		payload["price"] = *price
	}
	if *quantity != "" {
		payload["quantity"] = *quantity
	}

	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/items", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Item created: %v\n", result["id"])
	} else {
		fmt.Printf("✗ Create failed: %v\n", result)
	}
}

func getItem(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: itemvault item get <item-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/items/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}

	var item map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&item)
	out, _ := json.MarshalIndent(item, "", "  ")
	fmt.Println(string(out))
}

func updateItem(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.String("id", "", "item id")
	name := fs.String("name", "", "item name")
	description := fs.String("description", "", "item description")

	fs.Parse(args)

	if *id == "" || *name == "" {
		fmt.Println("Error: id and name are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"name": *name, "description": *description}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("PUT", getAPIURL()+"/items/"+*id, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}
	fmt.Printf("✓ Item updated: %s\n", *id)
}

func deleteItem(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: itemvault item delete <item-id>")
		return
	}

	req, _ := http.NewRequest("DELETE", getAPIURL()+"/items/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}
	fmt.Printf("✓ Item deleted: %s\n", args[0])
}

// Helper functions
func printError(resp *http.Response) {
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	fmt.Printf("✗ Request failed (%d): %v\n", resp.StatusCode, result)
}

func getAPIURL() string {
	if url := os.Getenv("ITEMVAULT_API"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.itemvault/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.itemvault", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`ItemVault CLI

Usage:
  itemvault <command> [options]

Commands:
  auth   User authentication (register, login, logout, who)
  item   Item operations (list, create, get, update, delete)
  help   Show this help message

Environment Variables:
  ITEMVAULT_API    API endpoint (default: http://localhost:8080)

Examples:
  itemvault auth register -username alice -email alice@example.com -password pass
  itemvault auth login -identifier alice -password pass
  itemvault item create -name Widget -price 19.99 -quantity 3
  itemvault item list
`)
}
