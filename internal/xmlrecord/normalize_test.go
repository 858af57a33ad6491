package xmlrecord

import (
	"strings"
	"testing"

	"github.com/parabank-conformance/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, doc string) *Node {
	t.Helper()
	node, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	return node
}

func TestNormalizeSequence_SingleIsWrapped(t *testing.T) {
	doc := mustDecode(t, `<accounts><account><id>7</id></account></accounts>`)

	root, _ := doc.Child("accounts")
	bare, _ := root.Nodes[0].Child("account")

	seq, err := NormalizeSequence(doc, "accounts.account")
	require.NoError(t, err)
	require.Len(t, seq, 1)
	assert.Same(t, bare.Nodes[0], seq[0], "the single element must be returned unchanged")
}

func TestNormalizeSequence_SequenceIsUnchanged(t *testing.T) {
	doc := mustDecode(t, `<transactions>
		<transaction><id>1</id></transaction>
		<transaction><id>2</id></transaction>
		<transaction><id>3</id></transaction>
	</transactions>`)

	root, _ := doc.Child("transactions")
	original, _ := root.Nodes[0].Child("transaction")

	seq, err := NormalizeSequence(doc, "transactions.transaction")
	require.NoError(t, err)
	require.Len(t, seq, len(original.Nodes))
	for i := range original.Nodes {
		assert.Same(t, original.Nodes[i], seq[i], "element %d out of place", i)
	}
}

func TestNormalizeSequence_MissingKey(t *testing.T) {
	testCases := []struct {
		name   string
		doc    string
		key    string
		reason string
	}{
		{"MissingRoot", `<customer><id>1</id></customer>`, "accounts.account", "missing node accounts"},
		{"EmptyContainer", `<accounts></accounts>`, "accounts.account", "missing node accounts.account"},
		{"WrongChild", `<accounts><acct/></accounts>`, "accounts.account", "missing node accounts.account"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeSequence(mustDecode(t, tc.doc), tc.key)
			require.Error(t, err)

			var malformed shared.MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, "accounts", malformed.Resource)
			assert.Equal(t, tc.reason, malformed.Reason)
		})
	}
}

func TestNormalizeSequence_EmptyKey(t *testing.T) {
	_, err := NormalizeSequence(mustDecode(t, `<accounts/>`), "")
	assert.ErrorIs(t, err, shared.MalformedResponseError{})

	_, err = NormalizeSequence(nil, "accounts.account")
	assert.ErrorIs(t, err, shared.MalformedResponseError{})
}

func TestNormalizeOptionalSequence(t *testing.T) {
	t.Run("EmptyContainerYieldsEmptySequence", func(t *testing.T) {
		seq, err := NormalizeOptionalSequence(mustDecode(t, `<transactions/>`), "transactions.transaction")
		require.NoError(t, err)
		assert.NotNil(t, seq)
		assert.Empty(t, seq)
	})

	t.Run("MissingContainerIsStillMalformed", func(t *testing.T) {
		_, err := NormalizeOptionalSequence(mustDecode(t, `<account><id>1</id></account>`), "transactions.transaction")
		assert.ErrorIs(t, err, shared.MalformedResponseError{})
	})

	t.Run("BehavesLikeNormalizeWhenPresent", func(t *testing.T) {
		seq, err := NormalizeOptionalSequence(mustDecode(t, `<transactions><transaction/><transaction/></transactions>`), "transactions.transaction")
		require.NoError(t, err)
		assert.Len(t, seq, 2)
	})

	t.Run("SingleSegmentKey", func(t *testing.T) {
		seq, err := NormalizeOptionalSequence(mustDecode(t, `<account><id>1</id></account>`), "account")
		require.NoError(t, err)
		assert.Len(t, seq, 1)
	})
}

func TestLookup(t *testing.T) {
	t.Run("Single", func(t *testing.T) {
		node, err := Lookup(mustDecode(t, `<account><id>1</id></account>`), "account")
		require.NoError(t, err)
		assert.Equal(t, "account", node.Name)
	})

	t.Run("RepeatedIsMalformed", func(t *testing.T) {
		_, err := Lookup(mustDecode(t, `<accounts><account/><account/></accounts>`), "accounts.account")
		var malformed shared.MalformedResponseError
		require.ErrorAs(t, err, &malformed)
		assert.Contains(t, malformed.Reason, "expected a single accounts.account")
	})

	t.Run("AmbiguousIntermediate", func(t *testing.T) {
		doc := mustDecode(t, `<root><accounts><account/></accounts><accounts><account/></accounts></root>`)
		_, err := Lookup(doc, "root.accounts.account")
		var malformed shared.MalformedResponseError
		require.ErrorAs(t, err, &malformed)
		assert.Contains(t, malformed.Reason, "ambiguous path")
	})
}
