package connectors

import "fmt"

// BitgetSuccessCode is the "code" value of every successful Bitget v2 response.
const BitgetSuccessCode = "00000"

// BitgetErrorCodes maps the Bitget futures error codes the relay runs into most often.
var BitgetErrorCodes = map[string]string{
	"40001": "ACCESS_KEY_EMPTY",
	"40002": "ACCESS_SIGN_EMPTY",
	"40003": "ACCESS_TIMESTAMP_EMPTY",
	"40005": "INVALID_ACCESS_TIMESTAMP",
	"40006": "INVALID_ACCESS_KEY",
	"40008": "REQUEST_TIMESTAMP_EXPIRED",
	"40009": "SIGN_SIGNATURE_ERROR",
	"40011": "ACCESS_PASSPHRASE_EMPTY",
	"40012": "APIKEY_PASSWORD_INCORRECT",
	"40014": "INCORRECT_PERMISSIONS",
	"40017": "PARAMETER_VERIFICATION_FAILED",
	"40018": "INVALID_IP",
	"40034": "PARAMETER_DOES_NOT_EXIST",
	"40037": "APIKEY_DOES_NOT_EXIST",
	"40754": "BALANCE_NOT_ENOUGH",
	"40757": "NOT_ENOUGH_POSITION",
	"40762": "ORDER_AMOUNT_EXCEEDS_BALANCE",
	"40774": "UNILATERAL_POSITION_ORDER_TYPE",
	"40797": "EXCEEDED_MAX_LEVERAGE",
	"40808": "CLIENT_OID_DUPLICATE",
	"43011": "SIZE_LESS_THAN_MIN",
	"45110": "LESS_THAN_MIN_ORDER_AMOUNT",
	"429":   "TOO_MANY_REQUESTS",
}

// GetErrorMsg returns a readable name for a Bitget error code.
func GetErrorMsg(code string) string {
	if code == BitgetSuccessCode {
		return "SUCCESS"
	}
	if msg, ok := BitgetErrorCodes[code]; ok {
		return msg
	}
	return fmt.Sprintf("UNKNOWN_BITGET_ERROR_%s", code)
}
