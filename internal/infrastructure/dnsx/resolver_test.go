package dnsx

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// startDNSServer runs a UDP nameserver for the duration of the test and
// returns its address.
func startDNSServer(t *testing.T, handler dns.HandlerFunc) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &dns.Server{PacketConn: pc, Handler: handler}
	go server.ActivateAndServe()
	t.Cleanup(func() { server.Shutdown() })

	return pc.LocalAddr().String()
}

func mxAnswer(targets ...string) dns.HandlerFunc {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetReply(req)
		for i, target := range targets {
			resp.Answer = append(resp.Answer, &dns.MX{
				Hdr: dns.RR_Header{
					Name:   req.Question[0].Name,
					Rrtype: dns.TypeMX,
					Class:  dns.ClassINET,
					Ttl:    300,
				},
				Preference: uint16((i + 1) * 10),
				Mx:         target,
			})
		}
		w.WriteMsg(resp)
	}
}

func rcodeAnswer(rcode int) dns.HandlerFunc {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		resp := new(dns.Msg)
		resp.SetRcode(req, rcode)
		w.WriteMsg(resp)
	}
}

func TestResolver_LookupMX(t *testing.T) {
	addr := startDNSServer(t, mxAnswer("mx1.example.com.", "mx2.example.com."))
	r := NewResolver([]string{addr}, time.Second, zap.NewNop())

	hosts, err := r.LookupMX(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"mx1.example.com.", "mx2.example.com."}, hosts)
}

func TestResolver_NoRecords(t *testing.T) {
	addr := startDNSServer(t, mxAnswer())
	r := NewResolver([]string{addr}, time.Second, zap.NewNop())

	hosts, err := r.LookupMX(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestResolver_NXDomainIsNotAnError(t *testing.T) {
	addr := startDNSServer(t, rcodeAnswer(dns.RcodeNameError))
	r := NewResolver([]string{addr}, time.Second, zap.NewNop())

	hosts, err := r.LookupMX(context.Background(), "no-such-domain.invalid")
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestResolver_ServerFailure(t *testing.T) {
	addr := startDNSServer(t, rcodeAnswer(dns.RcodeServerFailure))
	r := NewResolver([]string{addr}, time.Second, zap.NewNop())

	_, err := r.LookupMX(context.Background(), "example.com")
	assert.Error(t, err)
}

func TestResolver_FailoverToSecondServer(t *testing.T) {
	bad := startDNSServer(t, rcodeAnswer(dns.RcodeServerFailure))
	good := startDNSServer(t, mxAnswer("mx.example.com."))
	r := NewResolver([]string{bad, good}, time.Second, zap.NewNop())

	hosts, err := r.LookupMX(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"mx.example.com."}, hosts)
}

func TestResolver_ContextCancellation(t *testing.T) {
	addr := startDNSServer(t, mxAnswer("mx.example.com."))
	r := NewResolver([]string{addr}, time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.LookupMX(ctx, "example.com")
	assert.Error(t, err)
}
