package gdl90

type decodeFunc func(msg []byte) (Message, error)

// decoders maps each supported message ID to its field decoder.
var decoders = map[MessageID]decodeFunc{
	IDHeartbeat:                decodeHeartbeat,
	IDInitialization:           decodeInitialization,
	IDUplinkData:               decodeUplinkData,
	IDHeightAboveTerrain:       decodeHeightAboveTerrain,
	IDOwnshipReport:            decodeOwnshipReport,
	IDOwnshipGeometricAltitude: decodeOwnshipGeometricAltitude,
	IDTrafficReport:            decodeTrafficReport,
	IDBasicReport:              decodeBasicReport,
	IDLongReport:               decodeLongReport,
	IDForeFlight:               decodeForeFlight,
	IDStratuxHeartbeat:         decodeStratuxHeartbeat,
}

// Decode decodes one CRC-validated message (ID byte + fields, no CRC).
//
// An unrecognised ID yields an Unknown value together with an
// *UnknownMessageError; callers that only care about known messages can
// treat any error as "skip".
func Decode(msg []byte) (Message, error) {
	if len(msg) == 0 {
		return nil, &TruncatedMessageError{Want: 1}
	}
	id := MessageID(msg[0])
	dec, ok := decoders[id]
	if !ok {
		return Unknown{ID: id, Payload: msg}, &UnknownMessageError{ID: id, Payload: msg}
	}
	return dec(msg)
}
