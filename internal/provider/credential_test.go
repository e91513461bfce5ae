package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredential_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
	}{
		{"qc_poll", QcPoll("s3cret", "ABC123")},
		{"auth", Auth("user1", "token1")},
		{"failed", Failed("Code Expired")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.cred)
			require.NoError(t, err)

			parsed, err := ParseCredential(data)
			require.NoError(t, err)
			assert.Equal(t, tt.cred, parsed)
		})
	}
}

func TestCredential_WireFormat(t *testing.T) {
	data, err := json.Marshal(QcPoll("s", "C0DE"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"qc_poll","secret":"s","code":"C0DE"}`, string(data))

	data, err = json.Marshal(Auth("u", "t"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"auth","id":"u","token":"t"}`, string(data))
}

func TestParseCredential_UnknownState(t *testing.T) {
	_, err := ParseCredential([]byte(`{"type":"password","secret":"hunter2"}`))
	assert.Error(t, err)

	_, err = ParseCredential([]byte(`not json`))
	assert.Error(t, err)
}

func TestCredential_Session(t *testing.T) {
	id, token, err := Auth("u1", "t1").Session()
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
	assert.Equal(t, "t1", token)

	_, _, err = QcPoll("s", "c").Session()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, _, err = Failed("nope").Session()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, Failed("nope").IsAuth())
	assert.True(t, Auth("u", "t").IsAuth())
}

func TestDescriptor_SelectProfile(t *testing.T) {
	d := Descriptor{
		ID: "p1",
		Profiles: []Profile{
			{Name: "default", PlaybackSettings: json.RawMessage(`{"bitrate":1}`)},
			{Name: "hq", PlaybackSettings: json.RawMessage(`{"bitrate":2}`)},
		},
	}

	// First profile when nothing is requested.
	settings, err := d.SelectProfile(nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bitrate":1}`, string(settings))

	// Connection preference wins over the default.
	settings, err = d.SelectProfile(nil, ptr("hq"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"bitrate":2}`, string(settings))

	// Explicit request wins over the preference.
	settings, err = d.SelectProfile(ptr("default"), ptr("hq"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"bitrate":1}`, string(settings))

	_, err = d.SelectProfile(ptr("nope"), nil)
	assert.Error(t, err)

	_, err = Descriptor{ID: "empty"}.SelectProfile(nil, nil)
	assert.Error(t, err)
}

func TestRegistry_DuplicateID(t *testing.T) {
	factory := func(d Descriptor) (MediaProvider, error) { return nil, nil }

	_, err := NewRegistry([]Descriptor{{ID: "a"}, {ID: "a"}}, factory)
	assert.Error(t, err)

	r, err := NewRegistry([]Descriptor{{ID: "a"}, {ID: "b"}}, factory)
	require.NoError(t, err)
	assert.NotNil(t, r.Get("a"))
	assert.Nil(t, r.Get("missing"))
	assert.Len(t, r.List(), 2)
}
