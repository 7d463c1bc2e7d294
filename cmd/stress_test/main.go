package main

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

const (
	adminUser     = "admin"
	adminPassword = "12345"
	userPassword  = "stress-pass"
	readTimeout   = 10 * time.Second
)

type client struct {
	conn   net.Conn
	reader *bufio.Reader
}

func dial(addr string) (*client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return &client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// expect skips lines until one equals want.
func (c *client) expect(want string) error {
	for {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("waiting for %q: %w", want, err)
		}
		if strings.TrimRight(line, "\r\n") == want {
			return nil
		}
	}
}

func (c *client) readLine() (string, error) {
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	line, err := c.reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func (c *client) send(line string) error {
	_, err := fmt.Fprintln(c.conn, line)
	return err
}

// exchange answers a sequence of prompts.
func (c *client) exchange(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := c.expect(pairs[i]); err != nil {
			return err
		}
		if err := c.send(pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func register(addr, username string) error {
	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.conn.Close()

	err = c.exchange(
		"Login? Y/N", "Y",
		"Enter username:", adminUser,
		"Enter password:", adminPassword,
		"Enter user type to create: (ADMIN | CUSTOMER | EMPLOYEE)", "CUSTOMER",
		"Enter username:", username,
		"Enter password:", userPassword,
	)
	if err != nil {
		return err
	}
	result, err := c.readLine()
	if err != nil {
		return err
	}
	if result != "Success." {
		return errors.New(result)
	}
	return c.exchange("Login? Y/N", "N")
}

func login(addr, username string) error {
	c, err := dial(addr)
	if err != nil {
		return err
	}
	defer c.conn.Close()

	err = c.exchange(
		"Login? Y/N", "Y",
		"Enter username:", username,
		"Enter password:", userPassword,
	)
	if err != nil {
		return err
	}
	if err := c.expect("Welcome, " + username + "!"); err != nil {
		return err
	}
	return c.exchange("Choose an option:", "5")
}

func main() {
	var addr string
	var totalRequests int
	flagSet := pflag.NewFlagSet("stress_test", pflag.ExitOnError)
	flagSet.StringVar(&addr, "addr", "localhost:8080", "server address")
	flagSet.IntVar(&totalRequests, "clients", 50, "number of concurrent clients")
	flagSet.Parse(os.Args[1:])

	usernames := make([]string, totalRequests)
	for i := range usernames {
		usernames[i] = "stress-" + uuid.New().String()[:8]
	}

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Concurrent registrations
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(username string) {
			defer wg.Done()

			if err := register(addr, username); err != nil {
				log.Printf("register %s: %v", username, err)
				failCount.Add(1)
				return
			}
			successCount.Add(1)
		}(usernames[i])
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Every registered user must be able to log in
	var loginCount atomic.Int32
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(username string) {
			defer wg.Done()

			if err := login(addr, username); err != nil {
				log.Printf("login %s: %v", username, err)
				return
			}
			loginCount.Add(1)
		}(usernames[i])
	}
	wg.Wait()

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Clients:    %d\n", totalRequests)
	fmt.Printf("Registered:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Logged In:        %d\n", loginCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == int32(totalRequests) && loginCount.Load() == success {
		fmt.Printf("PASS: all %d concurrent registrations persisted\n", totalRequests)
	} else {
		fmt.Printf("FAIL: expected %d registrations and logins, got %d/%d\n",
			totalRequests, success, loginCount.Load())
		os.Exit(1)
	}
}
