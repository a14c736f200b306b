package carddav

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const propfindResponse = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:card="urn:ietf:params:xml:ns:carddav">
  <d:response>
    <d:href>/dav/addressbooks/user/ada/</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>ada</d:displayname>
        <d:resourcetype><d:collection/><card:addressbook/></d:resourcetype>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/addressbooks/user/ada/Default/</d:href>
    <d:propstat>
      <d:prop>
        <d:displayname>Personal</d:displayname>
        <d:resourcetype><d:collection/><card:addressbook/></d:resourcetype>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/addressbooks/user/ada/notes/</d:href>
    <d:propstat>
      <d:prop>
        <d:resourcetype><d:collection/></d:resourcetype>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

const reportResponse = `<?xml version="1.0" encoding="utf-8"?>
<d:multistatus xmlns:d="DAV:" xmlns:card="urn:ietf:params:xml:ns:carddav">
  <d:response>
    <d:href>/dav/addressbooks/user/ada/Default/1.vcf</d:href>
    <d:propstat>
      <d:prop>
        <d:getetag>"e1"</d:getetag>
        <card:address-data>BEGIN:VCARD
VERSION:3.0
UID:c-zeta
FN:Zeta Jones
EMAIL:zeta@example.com
END:VCARD</card:address-data>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/dav/addressbooks/user/ada/Default/2.vcf</d:href>
    <d:propstat>
      <d:prop>
        <d:getetag>"e2"</d:getetag>
        <card:address-data>BEGIN:VCARD
VERSION:3.0
UID:c-ada
FN:Ada Lovelace
EMAIL;TYPE=work:ada@example.com
END:VCARD</card:address-data>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ada" || pass != "app-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("Depth") != "1" {
			t.Errorf("missing Depth header on %s", r.Method)
		}
		w.WriteHeader(http.StatusMultiStatus)
		switch r.Method {
		case "PROPFIND":
			w.Write([]byte(propfindResponse))
		case "REPORT":
			w.Write([]byte(reportResponse))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "ada", "app-secret", 5*time.Second, nil)
	return server, client
}

func TestAddressBooks(t *testing.T) {
	_, client := newTestServer(t)

	books, err := client.AddressBooks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 {
		t.Fatalf("books = %+v, want the Default collection only", books)
	}
	if books[0].Href != "/dav/addressbooks/user/ada/Default/" || books[0].Name != "Personal" {
		t.Errorf("book = %+v", books[0])
	}
}

func TestContacts(t *testing.T) {
	_, client := newTestServer(t)

	contacts, err := client.Contacts(context.Background(), "/dav/addressbooks/user/ada/Default/")
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 2 {
		t.Fatalf("contacts = %+v", contacts)
	}
	// Sorted by name, case-insensitive.
	if contacts[0].Name != "Ada Lovelace" || contacts[1].Name != "Zeta Jones" {
		t.Errorf("unexpected order: %q, %q", contacts[0].Name, contacts[1].Name)
	}
	if contacts[0].Emails[0].Label != "work" {
		t.Errorf("label = %q", contacts[0].Emails[0].Label)
	}
}

func TestRequestErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "ada", "wrong", 5*time.Second, nil)
	_, err := client.AddressBooks(context.Background())
	var requestError *RequestError
	if !errors.As(err, &requestError) {
		t.Fatalf("want *RequestError, got %v", err)
	}
	if requestError.Status != http.StatusForbidden {
		t.Errorf("status = %d", requestError.Status)
	}
	if !IsRequestError(err) {
		t.Error("IsRequestError must match")
	}
}
