package ghapp_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/insper-comp/compiler-tester/pkg/domain/types"
	"github.com/insper-comp/compiler-tester/pkg/infra/ghapp"
	"github.com/insper-comp/compiler-tester/pkg/utils/testutil"
)

// Exercises the real token exchange. Requires a test App installation:
//
//	TEST_COMPTEST_GITHUB_APP_ID
//	TEST_COMPTEST_GITHUB_APP_PRIVATE_KEY
//	TEST_COMPTEST_GITHUB_INSTALL_ID
func TestTokenAgainstGitHub(t *testing.T) {
	strAppID := testutil.GetEnvOrSkip(t, "TEST_COMPTEST_GITHUB_APP_ID")
	privateKey := testutil.GetEnvOrSkip(t, "TEST_COMPTEST_GITHUB_APP_PRIVATE_KEY")
	strInstallID := testutil.GetEnvOrSkip(t, "TEST_COMPTEST_GITHUB_INSTALL_ID")

	appID := gt.R1(strconv.ParseInt(strAppID, 10, 64)).NoError(t)
	installID := gt.R1(strconv.ParseInt(strInstallID, 10, 64)).NoError(t)

	client := gt.R1(ghapp.New(
		types.GitHubAppID(appID),
		types.GitHubAppPrivateKey(privateKey),
	)).NoError(t)

	ctx := context.Background()
	token := gt.R1(client.Token(ctx, types.GitHubAppInstallID(installID))).NoError(t)
	gt.V(t, token != "").Equal(true)

	gt.R1(client.ListInstallationRepos(ctx, types.GitHubAppInstallID(installID))).NoError(t)
}
