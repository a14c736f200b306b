// Package carddav implements a minimal CardDAV client for Fastmail
// contacts. CardDAV is WebDAV carrying vCard payloads, so the client
// speaks raw HTTP with PROPFIND and REPORT bodies rather than pulling
// in a full DAV stack.
package carddav

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"
)

// DefaultBaseURL is the Fastmail CardDAV endpoint.
const DefaultBaseURL = "https://carddav.fastmail.com"

const propfindAddressbooks = `<?xml version="1.0" encoding="utf-8"?>
<d:propfind xmlns:d="DAV:" xmlns:card="urn:ietf:params:xml:ns:carddav">
  <d:prop>
    <d:displayname/>
    <d:resourcetype/>
  </d:prop>
</d:propfind>`

const reportAddressbookQuery = `<?xml version="1.0" encoding="utf-8"?>
<card:addressbook-query xmlns:d="DAV:" xmlns:card="urn:ietf:params:xml:ns:carddav">
  <d:prop>
    <d:getetag/>
    <card:address-data/>
  </d:prop>
</card:addressbook-query>`

// RequestError reports a CardDAV request the server refused.
type RequestError struct {
	Op     string
	Status int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("carddav %s failed with status %d", e.Op, e.Status)
}

// IsRequestError reports whether err is a *RequestError.
func IsRequestError(err error) bool {
	var requestError *RequestError
	return errors.As(err, &requestError)
}

// AddressBook identifies one address book collection on the server.
type AddressBook struct {
	Href string `json:"href"`
	Name string `json:"name"`
}

// Client talks to a CardDAV server with basic auth.
type Client struct {
	baseURL     string
	username    string
	appPassword string
	httpClient  *http.Client
	log         *slog.Logger
}

// NewClient creates a CardDAV client. baseURL falls back to the
// Fastmail endpoint when empty.
func NewClient(baseURL, username, appPassword string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		username:    username,
		appPassword: appPassword,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
	}
}

// AddressBooks discovers the user's address book collections via a
// depth-1 PROPFIND on the addressbook home.
func (c *Client) AddressBooks(ctx context.Context) ([]AddressBook, error) {
	path := fmt.Sprintf("/dav/addressbooks/user/%s/", c.username)
	body, err := c.dav(ctx, "PROPFIND", path, propfindAddressbooks)
	if err != nil {
		return nil, err
	}

	var ms multistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return nil, fmt.Errorf("parsing PROPFIND response: %w", err)
	}

	var books []AddressBook
	for _, resp := range ms.Responses {
		if !resp.isAddressBook() {
			continue
		}
		href := strings.TrimSpace(resp.Href)
		if href == "" || strings.HasSuffix(href, "/"+c.username+"/") {
			// Skip the home collection itself.
			continue
		}
		name := resp.displayName()
		if name == "" {
			name = lastPathSegment(href)
		}
		books = append(books, AddressBook{Href: href, Name: name})
	}
	return books, nil
}

// Contacts lists every contact in the address book at href via an
// addressbook-query REPORT, sorted by name.
func (c *Client) Contacts(ctx context.Context, href string) ([]Contact, error) {
	body, err := c.dav(ctx, "REPORT", href, reportAddressbookQuery)
	if err != nil {
		return nil, err
	}

	var ms multistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return nil, fmt.Errorf("parsing REPORT response: %w", err)
	}

	var contacts []Contact
	for _, resp := range ms.Responses {
		data := resp.addressData()
		if data == "" {
			continue
		}
		contact, err := ParseVCard(data)
		if err != nil {
			c.log.Debug("skipping unparseable vcard", "href", resp.Href, "error", err)
			continue
		}
		contacts = append(contacts, contact)
	}

	sort.Slice(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
	})
	return contacts, nil
}

// AllContacts fetches every contact across all address books.
func (c *Client) AllContacts(ctx context.Context) ([]Contact, error) {
	books, err := c.AddressBooks(ctx)
	if err != nil {
		return nil, err
	}
	var all []Contact
	for _, book := range books {
		contacts, err := c.Contacts(ctx, book.Href)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", book.Name, err)
		}
		all = append(all, contacts...)
	}
	return all, nil
}

func (c *Client) dav(ctx context.Context, method, path, body string) ([]byte, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	req.SetBasicAuth(c.username, c.appPassword)
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Depth", "1")

	c.log.Debug("carddav request", "method", method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending %s request: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", method, err)
	}
	// 207 Multi-Status is the expected success code for DAV methods.
	if resp.StatusCode != http.StatusMultiStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, &RequestError{Op: method, Status: resp.StatusCode}
	}
	return data, nil
}

func lastPathSegment(href string) string {
	parts := strings.Split(strings.Trim(href, "/"), "/")
	if len(parts) == 0 {
		return href
	}
	return parts[len(parts)-1]
}

// multistatus mirrors the WebDAV multistatus document. Element names
// are namespace-qualified so prefix choice on the wire does not matter.
type multistatus struct {
	XMLName   xml.Name      `xml:"DAV: multistatus"`
	Responses []davResponse `xml:"DAV: response"`
}

type davResponse struct {
	Href      string     `xml:"DAV: href"`
	Propstats []propstat `xml:"DAV: propstat"`
}

type propstat struct {
	Status string  `xml:"DAV: status"`
	Prop   davProp `xml:"DAV: prop"`
}

type davProp struct {
	DisplayName  *string       `xml:"DAV: displayname"`
	ResourceType *resourceType `xml:"DAV: resourcetype"`
	AddressData  string        `xml:"urn:ietf:params:xml:ns:carddav address-data"`
}

type resourceType struct {
	AddressBook *struct{} `xml:"urn:ietf:params:xml:ns:carddav addressbook"`
}

func (r davResponse) isAddressBook() bool {
	for _, ps := range r.Propstats {
		if ps.Prop.ResourceType != nil && ps.Prop.ResourceType.AddressBook != nil {
			return true
		}
	}
	return false
}

func (r davResponse) displayName() string {
	for _, ps := range r.Propstats {
		if ps.Prop.DisplayName != nil {
			return strings.TrimSpace(*ps.Prop.DisplayName)
		}
	}
	return ""
}

func (r davResponse) addressData() string {
	for _, ps := range r.Propstats {
		if ps.Prop.AddressData != "" {
			return ps.Prop.AddressData
		}
	}
	return ""
}
