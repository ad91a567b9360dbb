package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/kevmuriithi/skill_swap/configs"
	"github.com/kevmuriithi/skill_swap/database"
	"github.com/kevmuriithi/skill_swap/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const certificateTemplate = `<!DOCTYPE html>
<html>
<head><style>
body { font-family: Georgia, serif; text-align: center; padding: 60px; }
h1 { font-size: 42px; letter-spacing: 4px; }
.name { font-size: 32px; margin: 30px 0; }
.detail { font-size: 18px; color: #444; }
</style></head>
<body>
<h1>CERTIFICATE OF COMPLETION</h1>
<p class="detail">This certifies that</p>
<p class="name">{{.UserName}}</p>
<p class="detail">completed a skill swap in <b>{{.SkillName}}</b> with {{.PartnerName}}</p>
<p class="detail">on {{.CompletionDate}}</p>
</body>
</html>`

// GenerateSwapCertificates renders a completion certificate for each side of
// a completed swap and stores the PDFs on Cloudinary.
func GenerateSwapCertificates(swap models.Swap) {
	if swap.Status != models.SwapStatusCompleted {
		return
	}

	sides := []struct {
		user    models.User
		partner models.User
		skill   models.Skill
	}{
		{swap.Requester, swap.Provider, swap.WantedSkill},
		{swap.Provider, swap.Requester, swap.OfferedSkill},
	}

	for _, side := range sides {
		var existing models.Certificate
		if err := database.DB.Where("swap_id = ? AND user_id = ?", swap.ID, side.user.ID).First(&existing).Error; err == nil {
			continue
		}

		htmlData, err := generateCertificateHTML(side.user.FullName, side.partner.FullName, side.skill.Name)
		if err != nil {
			log.Printf("🔥 Failed to generate certificate HTML: %v", err)
			continue
		}

		pdfBytes, err := generatePDFFromHTML(htmlData)
		if err != nil {
			log.Printf("🔥 Failed to generate PDF: %v", err)
			continue
		}

		uploadURL, err := uploadToCloudinary(pdfBytes, side.user.ID.String())
		if err != nil {
			log.Printf("🔥 Failed to upload certificate to Cloudinary: %v", err)
			continue
		}

		newCertificate := models.Certificate{
			UserID:         side.user.ID,
			PartnerID:      side.partner.ID,
			SwapID:         swap.ID,
			SkillName:      side.skill.Name,
			CompletionDate: time.Now(),
			CertificateURL: uploadURL,
		}

		if err := database.DB.Create(&newCertificate).Error; err != nil {
			log.Printf("🔥 Failed to create certificate record for user %s: %v", side.user.ID, err)
		} else {
			log.Printf("✅ Generated and uploaded certificate '%s' for user %s.", side.skill.Name, side.user.ID)
		}
	}
}

func generateCertificateHTML(userName, partnerName, skillName string) (string, error) {
	tmpl, err := template.New("certificate").Parse(certificateTemplate)
	if err != nil {
		return "", err
	}

	data := struct {
		UserName       string
		PartnerName    string
		SkillName      string
		CompletionDate string
	}{
		UserName:       userName,
		PartnerName:    partnerName,
		SkillName:      skillName,
		CompletionDate: time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, userID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("certificates/%s_%s", userID, uuid.New().String()),
		Folder:       "skill_swap_certificates",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
