//go:build darwin && cgo

package applevision

/*
#cgo CFLAGS: -x objective-c -fobjc-arc -mmacosx-version-min=10.15
#cgo LDFLAGS: -framework Vision -framework Foundation -framework CoreGraphics -framework ImageIO

#import <Foundation/Foundation.h>
#import <Vision/Vision.h>
#import <ImageIO/ImageIO.h>
#include <stdlib.h>
#include <string.h>

static char* ivJSON(NSDictionary* payload) {
	NSError* err = nil;
	NSData* data = [NSJSONSerialization dataWithJSONObject:payload options:0 error:&err];
	if (data == nil) {
		return strdup("{\"error\":\"failed to serialize vision results\"}");
	}
	char* out = malloc(data.length + 1);
	memcpy(out, data.bytes, data.length);
	out[data.length] = 0;
	return out;
}

static char* ivError(NSString* message) {
	return ivJSON(@{@"error": message ?: @"unknown error"});
}

static NSMutableDictionary* ivRect(CGRect r) {
	return [@{
		@"x": @(r.origin.x),
		@"y": @(r.origin.y),
		@"w": @(r.size.width),
		@"h": @(r.size.height),
	} mutableCopy];
}

static CGImageRef ivCreateImage(const void* bytes, int length) {
	NSData* data = [NSData dataWithBytes:bytes length:length];
	CGImageSourceRef source = CGImageSourceCreateWithData((__bridge CFDataRef)data, NULL);
	if (source == NULL) {
		return NULL;
	}
	CGImageRef image = CGImageSourceCreateImageAtIndex(source, 0, NULL);
	CFRelease(source);
	return image;
}

static char* ivRun(const void* bytes, int length, VNRequest* request, NSArray* (^collect)(VNRequest*)) {
	@autoreleasepool {
		CGImageRef image = ivCreateImage(bytes, length);
		if (image == NULL) {
			return ivError(@"failed to load image");
		}
		size_t width = CGImageGetWidth(image);
		size_t height = CGImageGetHeight(image);

		VNImageRequestHandler* handler = [[VNImageRequestHandler alloc] initWithCGImage:image options:@{}];
		NSError* err = nil;
		BOOL ok = [handler performRequests:@[request] error:&err];
		CGImageRelease(image);
		if (!ok) {
			return ivError(err != nil ? err.localizedDescription : @"vision request failed");
		}

		return ivJSON(@{
			@"width": @(width),
			@"height": @(height),
			@"observations": collect(request),
		});
	}
}

static char* ivDetectText(const void* bytes, int length) {
	VNDetectTextRectanglesRequest* request = [[VNDetectTextRectanglesRequest alloc] init];
	return ivRun(bytes, length, request, ^NSArray*(VNRequest* r) {
		NSMutableArray* out = [NSMutableArray array];
		for (VNTextObservation* o in r.results) {
			NSMutableDictionary* item = ivRect(o.boundingBox);
			item[@"confidence"] = @(o.confidence);
			[out addObject:item];
		}
		return out;
	});
}

static char* ivRecognizeText(const void* bytes, int length, const char* languages, int correction, int fast) {
	VNRecognizeTextRequest* request = [[VNRecognizeTextRequest alloc] init];
	NSString* langs = [NSString stringWithUTF8String:languages];
	if (langs.length > 0) {
		request.recognitionLanguages = [langs componentsSeparatedByString:@","];
	}
	request.usesLanguageCorrection = correction != 0;
	request.recognitionLevel = fast ? VNRequestTextRecognitionLevelFast : VNRequestTextRecognitionLevelAccurate;

	NSRegularExpression* words = [NSRegularExpression regularExpressionWithPattern:@"\\S+" options:0 error:nil];

	return ivRun(bytes, length, request, ^NSArray*(VNRequest* r) {
		NSMutableArray* out = [NSMutableArray array];
		for (VNRecognizedTextObservation* o in r.results) {
			VNRecognizedText* candidate = [[o topCandidates:1] firstObject];
			if (candidate == nil) {
				continue;
			}
			NSString* text = candidate.string;
			NSError* err = nil;

			VNRectangleObservation* lineBox = [candidate boundingBoxForRange:NSMakeRange(0, text.length) error:&err];
			NSMutableDictionary* item = ivRect(lineBox != nil ? lineBox.boundingBox : o.boundingBox);
			item[@"confidence"] = @(candidate.confidence);
			item[@"text"] = text;

			NSMutableArray* wordItems = [NSMutableArray array];
			for (NSTextCheckingResult* m in [words matchesInString:text options:0 range:NSMakeRange(0, text.length)]) {
				VNRectangleObservation* wordBox = [candidate boundingBoxForRange:m.range error:&err];
				if (wordBox == nil) {
					continue;
				}
				NSMutableDictionary* word = ivRect(wordBox.boundingBox);
				word[@"text"] = [text substringWithRange:m.range];
				[wordItems addObject:word];
			}
			item[@"words"] = wordItems;
			[out addObject:item];
		}
		return out;
	});
}

static char* ivClassify(const void* bytes, int length) {
	VNClassifyImageRequest* request = [[VNClassifyImageRequest alloc] init];
	return ivRun(bytes, length, request, ^NSArray*(VNRequest* r) {
		NSMutableArray* out = [NSMutableArray array];
		for (VNClassificationObservation* o in r.results) {
			if (o.confidence <= 0) {
				continue;
			}
			[out addObject:@{@"label": o.identifier, @"confidence": @(o.confidence)}];
		}
		return out;
	});
}

static char* ivDetectObjects(const void* bytes, int length) {
	VNGenerateObjectnessBasedSaliencyImageRequest* request = [[VNGenerateObjectnessBasedSaliencyImageRequest alloc] init];
	return ivRun(bytes, length, request, ^NSArray*(VNRequest* r) {
		NSMutableArray* out = [NSMutableArray array];
		for (VNSaliencyImageObservation* o in r.results) {
			for (VNRectangleObservation* s in o.salientObjects) {
				NSMutableDictionary* item = ivRect(s.boundingBox);
				item[@"confidence"] = @(s.confidence);
				item[@"label"] = @"object";
				[out addObject:item];
			}
		}
		return out;
	});
}
*/
import "C"

import (
	"context"
	"errors"
	"strings"
	"unsafe"

	"ivision/internal/domain/entity"
)

// DetectText ищет прямоугольники текста (VNDetectTextRectanglesRequest).
func (e *Engine) DetectText(ctx context.Context, img *entity.Image) ([]entity.TextObservation, error) {
	resp, err := call(ctx, img, func(data unsafe.Pointer, n C.int) *C.char {
		return C.ivDetectText(data, n)
	})
	if err != nil {
		return nil, err
	}
	return resp.textObservations(), nil
}

// RecognizeText распознаёт текст (VNRecognizeTextRequest).
func (e *Engine) RecognizeText(ctx context.Context, img *entity.Image, opts entity.OCROptions) (*entity.OCRResult, error) {
	languages := C.CString(strings.Join(opts.Languages, ","))
	defer C.free(unsafe.Pointer(languages))

	correction, fast := C.int(0), C.int(0)
	if opts.LanguageCorrection {
		correction = 1
	}
	if opts.Fast {
		fast = 1
	}

	resp, err := call(ctx, img, func(data unsafe.Pointer, n C.int) *C.char {
		return C.ivRecognizeText(data, n, languages, correction, fast)
	})
	if err != nil {
		return nil, err
	}
	return resp.ocrResult(), nil
}

// Classify классифицирует изображение (VNClassifyImageRequest).
func (e *Engine) Classify(ctx context.Context, img *entity.Image) ([]entity.Classification, error) {
	resp, err := call(ctx, img, func(data unsafe.Pointer, n C.int) *C.char {
		return C.ivClassify(data, n)
	})
	if err != nil {
		return nil, err
	}
	return resp.classifications(), nil
}

// DetectObjects ищет объекты (VNGenerateObjectnessBasedSaliencyImageRequest).
func (e *Engine) DetectObjects(ctx context.Context, img *entity.Image) ([]entity.ObjectObservation, error) {
	resp, err := call(ctx, img, func(data unsafe.Pointer, n C.int) *C.char {
		return C.ivDetectObjects(data, n)
	})
	if err != nil {
		return nil, err
	}
	return resp.objects(), nil
}

// call передаёт байты изображения в Vision. Сам запрос Vision не прерывается,
// контекст проверяется только перед вызовом.
func call(ctx context.Context, img *entity.Image, fn func(unsafe.Pointer, C.int) *C.char) (*nativeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(img.Data) == 0 {
		return nil, errors.New("empty image")
	}

	out := fn(unsafe.Pointer(&img.Data[0]), C.int(len(img.Data)))
	if out == nil {
		return nil, errors.New("vision returned no data")
	}
	defer C.free(unsafe.Pointer(out))

	return parseResponse([]byte(C.GoString(out)))
}
