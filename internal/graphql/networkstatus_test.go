package graphql

import "testing"

func TestNetworkStatusInFlight(t *testing.T) {
	inFlight := []NetworkStatus{
		NetworkStatusLoading,
		NetworkStatusSetVariables,
		NetworkStatusFetchMore,
		NetworkStatusRefetch,
		NetworkStatusPoll,
	}
	for _, s := range inFlight {
		if !s.InFlight() {
			t.Fatalf("%s should be in flight", s)
		}
	}
	if NetworkStatusReady.InFlight() || NetworkStatusError.InFlight() {
		t.Fatal("ready and error are not in flight")
	}
}

func TestNetworkStatusString(t *testing.T) {
	if got := NetworkStatusRefetch.String(); got != "refetch" {
		t.Fatalf("got %q", got)
	}
	if got := NetworkStatus(99).String(); got != "unknown" {
		t.Fatalf("got %q", got)
	}
}
